package shim

import (
	"sort"
	"strings"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	clusterlights "github.com/JeffreyCastellano/cluster-lights-go"
)

// MarkerPrefix is the naming convention the legacy bridge applies to every
// exported operation.
const MarkerPrefix = "_"

// table is an explicit lookup table built once at wrap time. Strictly more
// inspectable than live interception: the export list is enumerated up
// front and misses are plain map misses.
type table struct {
	funcs map[string]clusterlights.Func
}

func (t *table) Lookup(name string) clusterlights.Func {
	if fn, ok := t.funcs[name]; ok {
		return fn
	}
	// Absence means "operation not supported by this tier", not a crash.
	return nil
}

func (t *table) Names() []string {
	names := make([]string, 0, len(t.funcs))
	for name := range t.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Native builds the call surface for a native-tier instance. Operations
// resolve under their exact exported names only.
func Native(inst api.Module) clusterlights.CallSurface {
	t := &table{funcs: make(map[string]clusterlights.Func)}
	for name := range inst.ExportedFunctionDefinitions() {
		t.funcs[name] = inst.ExportedFunction(name)
	}
	return t
}

// Wrap builds the call surface for a legacy bridge instance. Every export
// resolves under its exact name, and every marker-prefixed export also
// resolves under its bare name, with exact matches taking precedence. The
// resulting view is indistinguishable from a native-tier surface: same call
// semantics, same observable results.
func Wrap(inst api.Module) clusterlights.CallSurface {
	t := &table{funcs: make(map[string]clusterlights.Func)}

	defs := inst.ExportedFunctionDefinitions()
	for name := range defs {
		t.funcs[name] = inst.ExportedFunction(name)
	}
	aliased := 0
	for name := range defs {
		bare := strings.TrimPrefix(name, MarkerPrefix)
		if bare == name || bare == "" {
			continue
		}
		if _, taken := t.funcs[bare]; taken {
			continue
		}
		t.funcs[bare] = t.funcs[name]
		aliased++
	}

	Logger().Debug("wrapped legacy call surface",
		zap.Int("exports", len(defs)),
		zap.Int("aliased", aliased))
	return t
}
