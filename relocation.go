package regionrunner

import (
	"reflect"
	"strings"

	"github.com/Swind/go-region-runner/core"
	"github.com/Swind/go-region-runner/host"
)

// canonicalPath is the import path the library is published under. It is
// assembled at run time so that tools rewriting import paths leave it alone.
var canonicalPath = strings.Join([]string{"github.com", "Swind", "go-region-runner"}, "/")

// compiledPath is the package path this copy was compiled under.
func compiledPath() string {
	return reflect.TypeOf(Runtime{}).PkgPath()
}

// checkRelocation warns when the library is still compiled under its
// published path. Two plugins embedding the same path share one copy, so
// each should vendor it under its own module.
func checkRelocation(owner host.Plugin, logger core.Logger, path string) bool {
	if path != canonicalPath {
		return false
	}

	suggested := "<your module>/internal/regionrunner"
	var authors []string
	if desc, ok := owner.(host.PluginDescription); ok {
		if pkg := strings.TrimSpace(desc.Package()); pkg != "" {
			suggested = pkg + "/internal/regionrunner"
		}
		authors = desc.Authors()
	}

	logger.Warn("the region runner library has not been relocated",
		core.F("owner", owner.Name()),
		core.F("package", path),
		core.F("suggested", suggested),
	)
	if len(authors) > 0 {
		logger.Warn("please let the plugin authors know about this issue",
			core.F("owner", owner.Name()),
			core.F("authors", strings.Join(authors, ", ")),
		)
	}
	return true
}
