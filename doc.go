// Package epitopes holds the file access shared by the epitope tools: reading
// prediction tables that may be compressed, delimited by commas or tabs, and
// stored either locally or in Google Storage.
//
// The pipeline itself lives in the subpackages. Raw per-peptide scores from a
// prediction method are normalized into a scoretable.Table and ranked, binders
// are selected against per-allele cutoffs calibrated from a reference corpus
// (package cutoff, package binders), binders shared by several alleles are
// aggregated and deduplicated by core (package promiscuous), and the surviving
// positions are grouped into epitope regions (package cluster).
package epitopes
