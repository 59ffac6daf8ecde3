package predictor

import (
	"fmt"
	"sort"
	"strings"
)

// Methods maps each method name to its constructor.
var Methods = map[string]func(Config) Predictor{
	"netmhciipan": func(c Config) Predictor { return NewNetMHCIIpan(c) },
	"iedbmhc1":    func(c Config) Predictor { return NewIEDBMHCI(c) },
	"iedbmhc2":    func(c Config) Predictor { return NewIEDBMHCII(c) },
	"tepitope":    func(c Config) Predictor { return NewTEpitope(c) },
	"bcell":       func(c Config) Predictor { return NewBCell(c) },
}

// MethodNames lists the registered method names, sorted and comma separated.
func MethodNames() string {
	names := make([]string, 0, len(Methods))
	for m := range Methods {
		names = append(names, m)
	}
	sort.Strings(names)

	return strings.Join(names, ", ")
}

// New returns the named predictor configured with cfg.
func New(name string, cfg Config) (Predictor, error) {
	constructor, exists := Methods[name]
	if !exists {
		return nil, fmt.Errorf("%w %s. Valid predictor names include: %s", ErrUnknownMethod, name, MethodNames())
	}

	return constructor(cfg), nil
}
