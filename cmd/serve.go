package main

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/desertthunder/marquee/internal/repositories"
	"github.com/desertthunder/marquee/internal/server"
	"github.com/desertthunder/marquee/internal/shared"
	"github.com/urfave/cli/v3"
)

const defaultAPIPrefix = "/api/"

// Serve runs the fixture backend over the local database until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase(cmd.String("db"))
	if err != nil {
		return err
	}
	defer db.Close()

	seedPath := cmd.String("seed")
	if seedPath == "" {
		seedPath = r.config.Server.SeedPath
	}
	if _, err := r.seedDatabase(ctx, db, seedPath); err != nil {
		return err
	}

	addr := cmd.String("addr")
	if addr == "" {
		addr = r.config.Server.Addr()
	}

	latency := r.config.Server.Latency()
	if ms := cmd.Int("latency"); ms >= 0 {
		latency = time.Duration(ms) * time.Millisecond
	}

	prefix := apiPrefix(r.config.API.BaseURL)
	logger := shared.WithLogger(r.logger, "component", "server")
	router := server.NewCatalogRouter(repositories.NewMovieRepository(db), prefix, r.config.Server.Token, latency, logger)

	r.writePlain("Serving catalog on http://%s%s (Ctrl+C to stop)\n", addr, prefix)
	if err := server.NewServer(addr, router, logger).Run(ctx); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	r.logger.Info("server stopped")
	return nil
}

// apiPrefix mounts the endpoints under the path of the configured client base URL so
// `marquee serve` and the client agree without extra settings.
func apiPrefix(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil {
		return defaultAPIPrefix
	}
	p := u.Path
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if !strings.HasSuffix(p, "/") {
		p += "/"
	}
	return p
}
