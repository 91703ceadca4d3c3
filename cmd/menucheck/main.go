// Command menucheck validates a menu definition and prints the menu a given
// set of module permissions would see.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lee-tech/workforce-admin/internal/models"
	"github.com/lee-tech/workforce-admin/internal/navigation"
)

// grants collects repeated -grant flags: "key" grants, "key=false" denies.
type grants models.PermissionMap

func (g grants) String() string {
	return strings.Join(models.PermissionMap(g).Granted(), ",")
}

func (g grants) Set(value string) error {
	key, raw, hasValue := strings.Cut(strings.TrimSpace(value), "=")
	if key == "" {
		return errors.New("empty permission key")
	}
	granted := true
	if hasValue {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("permission %s: %w", key, err)
		}
		granted = parsed
	}
	g[key] = granted
	return nil
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "menucheck: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	perms := grants{}
	fs := flag.NewFlagSet("menucheck", flag.ContinueOnError)
	menuPath := fs.String("menu", "", "Path to a YAML menu definition (defaults to the built-in menu)")
	format := fs.String("format", "json", "Output format: json or yaml")
	keys := fs.Bool("keys", false, "List the permission keys the menu references and exit")
	fs.Var(perms, "grant", "Module permission to grant, as key or key=false (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	menu, err := navigation.LoadMenu(*menuPath)
	if err != nil {
		return err
	}

	var result any = menu.For(models.PermissionMap(perms))
	if *keys {
		result = menu.PermissionKeys()
	}

	switch strings.ToLower(*format) {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(result); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q", *format)
	}
}
