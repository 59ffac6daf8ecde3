package main

import (
	"github.com/carbocation/epitopes/resultdb"
)

type Global struct {
	log logger
	db  *resultdb.DB

	Site string
}

type logger interface {
	Print(v ...interface{})
	Printf(format string, v ...interface{})
	Println(v ...interface{})
}
