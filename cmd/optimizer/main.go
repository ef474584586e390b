// The optimizer command reads a JSON solve request, runs the mission
// packing pipeline, and writes the JSON result to stdout.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/log"

	apiv1 "github.com/packmate/mission-packing-optimizer/api/v1"
	"github.com/packmate/mission-packing-optimizer/internal/logging"
	"github.com/packmate/mission-packing-optimizer/pkg/config"
	"github.com/packmate/mission-packing-optimizer/pkg/core"
	"github.com/packmate/mission-packing-optimizer/pkg/solver"
)

func main() {
	var (
		requestPath string
		configFile  string
		profileName string
	)
	pflag.StringVar(&requestPath, "request", "-", "Path to the JSON solve request, or - for stdin.")
	pflag.StringVar(&configFile, "config", "", "Optional config file; environment variables (PACKMATE_*) take precedence.")
	pflag.StringVar(&profileName, "profile", "", "Mission profile from the catalog to apply when the request has no constraints.")
	pflag.Parse()

	if err := run(requestPath, configFile, profileName); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		if errors.Is(err, core.ErrInvalidInput) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(requestPath, configFile, profileName string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	logger := logging.NewLogger(cfg.DevLogging)
	ctrl.SetLogger(logger)
	ctx := log.IntoContext(context.Background(), logger)

	req, err := readRequest(requestPath)
	if err != nil {
		return err
	}
	if err := applyCatalog(cfg, req, profileName); err != nil {
		return err
	}

	opt, err := solver.NewOptimizer(cfg)
	if err != nil {
		return err
	}
	res, err := opt.Optimize(ctx, req)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

func readRequest(path string) (*apiv1.SolveRequest, error) {
	var raw []byte
	var err error
	if path == "-" {
		raw, err = io.ReadAll(os.Stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading request: %w", err)
	}

	req := &apiv1.SolveRequest{}
	if err := json.Unmarshal(raw, req); err != nil {
		return nil, fmt.Errorf("%w: malformed request JSON: %v", core.ErrInvalidInput, err)
	}
	return req, nil
}

// applyCatalog resolves catalog container references and, when asked,
// applies a mission profile to a request without constraints of its own.
func applyCatalog(cfg *config.Config, req *apiv1.SolveRequest, profileName string) error {
	if cfg.CatalogPath == "" {
		if profileName != "" {
			return fmt.Errorf("--profile requires a catalog (set %s)", config.KeyCatalogPath)
		}
		return nil
	}

	catalog, err := config.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		return err
	}

	for i, c := range req.Containers {
		resolved, err := catalog.ResolveContainer(c)
		if err != nil {
			return fmt.Errorf("%w: %v", core.ErrInvalidInput, err)
		}
		req.Containers[i] = resolved
	}

	if profileName != "" {
		if !req.Constraints.Empty() {
			return fmt.Errorf("%w: request already carries constraints, cannot apply profile %q", core.ErrInvalidInput, profileName)
		}
		profile, ok := catalog.Profile(profileName)
		if !ok {
			return fmt.Errorf("%w: unknown mission profile %q", core.ErrInvalidInput, profileName)
		}
		req.Constraints = profile.Constraints()
	}
	return nil
}
