package version

import "fmt"

// Значения подставляются при сборке:
// go build -ldflags "-X github.com/vladislavdragonenkov/bookorders/internal/version.version=v1.2.3"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Info returns version information populated via -ldflags.
func Info() (v, c, d string) { return version, commit, date }

// GetVersion возвращает версию сборки.
func GetVersion() string { return version }

// GetCommit возвращает commit сборки.
func GetCommit() string { return commit }

// GetDate возвращает дату сборки.
func GetDate() string { return date }

func String() string {
	return fmt.Sprintf("bookorders version=%s commit=%s date=%s", version, commit, date)
}
