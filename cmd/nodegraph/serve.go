package main

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aretw0/nodegraph"
	"github.com/aretw0/nodegraph/internal/presentation/tui"
	"github.com/aretw0/nodegraph/internal/runtime"
	httpAdapter "github.com/aretw0/nodegraph/pkg/adapters/http"
	redisAdapter "github.com/aretw0/nodegraph/pkg/adapters/redis"
	"github.com/aretw0/nodegraph/pkg/observability"
	"github.com/aretw0/nodegraph/pkg/persistence/middleware"
	"github.com/aretw0/nodegraph/pkg/ports"
	"github.com/aretw0/nodegraph/pkg/registry"
	"github.com/aretw0/nodegraph/pkg/session"
	backend "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP editing server",
	Long: `Serves the documents in --dir over HTTP. Clients post editor requests,
evaluate documents and follow changes through Server-Sent Events.

With --redis, thumbnails are kept in Redis, evaluated in the background after
every edit, and documents are locked across server instances.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetString("port")
		redisAddr, _ := cmd.Flags().GetString("redis")
		quiet, _ := cmd.Flags().GetBool("quiet")

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		catalog := registry.Builtin()
		metrics := observability.NewMetrics()
		docOpts := []nodegraph.Option{
			nodegraph.WithCatalog(catalog),
			nodegraph.WithLogger(logger),
			nodegraph.WithMetrics(metrics),
		}
		managerOpts := []session.Option{session.WithLogger(componentLogger("session"))}

		if redisAddr != "" {
			client := backend.NewClient(&backend.Options{Addr: redisAddr})
			defer client.Close()
			if err := client.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("redis unreachable at %s: %w", redisAddr, err)
			}
			store, err := thumbnailStore(cmd, redisAdapter.NewFromClient(client))
			if err != nil {
				return err
			}
			worker := runtime.NewWorker(catalog,
				runtime.WithStore(store),
				runtime.WithWorkerLogger(componentLogger("worker")),
				runtime.WithWorkerMetrics(metrics),
			)
			worker.Start(ctx)
			defer worker.Stop()

			docOpts = append(docOpts, nodegraph.WithThumbnails(store), nodegraph.WithWorker(worker))
			managerOpts = append(managerOpts, session.WithLocker(redisAdapter.NewLocker(client, "nodegraph:lock:")))
		}

		manager := session.NewManager(session.FromLoader(newLoader(cmd, catalog), docOpts...), managerOpts...)
		handler := httpAdapter.NewHandler(manager, catalog,
			httpAdapter.WithMetrics(metrics),
			httpAdapter.WithLogger(componentLogger("http")),
		)
		srv := &http.Server{
			Addr:    ":" + port,
			Handler: handler,
		}

		if !quiet {
			tui.PrintBanner(cmd.ErrOrStderr(), strings.TrimSpace(nodegraph.Version))
		}

		serverErrors := make(chan error, 1)
		go func() {
			dir, _ := cmd.Flags().GetString("dir")
			fmt.Fprintf(cmd.ErrOrStderr(), "Serving documents from %s on %s\n", dir, srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)
		case <-ctx.Done():
			fmt.Fprintln(cmd.ErrOrStderr(), "\nShutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				srv.Close()
				return fmt.Errorf("graceful shutdown did not complete: %w", err)
			}
			return nil
		}
	},
}

// thumbnailStore seals store when a thumbnail key is configured.
func thumbnailStore(cmd *cobra.Command, store ports.ThumbnailStore) (ports.ThumbnailStore, error) {
	encoded, _ := cmd.Flags().GetString("thumbnail-key")
	if encoded == "" {
		encoded = os.Getenv("NODEGRAPH_THUMBNAIL_KEY")
	}
	if encoded == "" {
		return store, nil
	}
	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("invalid thumbnail key: %w", err)
	}
	mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})
	if err != nil {
		return nil, err
	}
	return middleware.Chain(store, mw), nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().String("redis", "", "Redis address for thumbnails and document locks")
	serveCmd.Flags().String("thumbnail-key", "", "Base64 AES-256 key sealing thumbnails in Redis (or $NODEGRAPH_THUMBNAIL_KEY)")
	serveCmd.Flags().BoolP("quiet", "q", false, "Do not print the banner")
}
