package main

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cuemby/smoldb/pkg/crypto"
	"github.com/cuemby/smoldb/pkg/log"
	"github.com/cuemby/smoldb/pkg/maintenance"
	"github.com/cuemby/smoldb/pkg/metrics"
	"github.com/cuemby/smoldb/pkg/registry"
	"github.com/cuemby/smoldb/pkg/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the smoldb core",
	Long:  `serve accepts connections on the listen address and dispatches each to its own session.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("listen-addr", "0.0.0.0:8222", "TCP address to accept client connections on")
	serveCmd.Flags().String("metrics-addr", "", "Address to serve Prometheus metrics on (disabled if empty)")
	serveCmd.Flags().String("data-dir", "./smoldb-data", "Directory holding the name index and per-database files")
	serveCmd.Flags().Duration("sweep-interval", 10*time.Second, "Interval between cache maintenance sweeps")
	serveCmd.Flags().Bool("persist-keys", false, "Load/save the server's RSA key pair from --data-dir instead of generating a fresh one each start")
}

func runServe(cmd *cobra.Command, args []string) error {
	listenAddr, _ := cmd.Flags().GetString("listen-addr")
	metricsAddr, _ := cmd.Flags().GetString("metrics-addr")
	dataDir, _ := cmd.Flags().GetString("data-dir")
	sweepInterval, _ := cmd.Flags().GetDuration("sweep-interval")
	persistKeys, _ := cmd.Flags().GetBool("persist-keys")

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	reg, err := registry.Open(dataDir)
	if err != nil {
		return fmt.Errorf("open registry: %w", err)
	}
	defer reg.Close()

	serverKey, err := loadOrGenerateServerKey(dataDir, persistKeys)
	if err != nil {
		return fmt.Errorf("server key: %w", err)
	}

	ln, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", listenAddr, err)
	}
	defer ln.Close()
	log.Info(fmt.Sprintf("smoldb core listening on %s", listenAddr))

	sweeper := maintenance.New(reg, sweepInterval)
	sweeper.Start()
	defer sweeper.Stop()

	if metricsAddr != "" {
		metricsSrv := &http.Server{Addr: metricsAddr, Handler: metrics.Handler()}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Errorf("metrics server error", err)
			}
		}()
		defer metricsSrv.Close()
		log.Info(fmt.Sprintf("metrics listening on %s", metricsAddr))
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	acceptErrCh := make(chan error, 1)
	go acceptLoop(ln, reg, serverKey, acceptErrCh)

	select {
	case <-sigCh:
		log.Info("shutting down")
	case err := <-acceptErrCh:
		return err
	}
	return nil
}

func acceptLoop(ln net.Listener, reg *registry.Registry, serverKey *crypto.KeyPair, errCh chan<- error) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			errCh <- err
			return
		}
		metrics.SessionsActive.Inc()
		go func() {
			defer metrics.SessionsActive.Dec()
			sess := session.New(conn, reg, serverKey)
			sess.Serve()
		}()
	}
}

func loadOrGenerateServerKey(dataDir string, persist bool) (*crypto.KeyPair, error) {
	if !persist {
		return crypto.GenerateKeyPair()
	}

	keyPath := filepath.Join(dataDir, "server.key")
	if _, err := os.Stat(keyPath); err == nil {
		return crypto.LoadKeyPairFromFile(keyPath)
	}

	key, err := crypto.GenerateKeyPair()
	if err != nil {
		return nil, err
	}
	if err := key.SaveToFile(keyPath); err != nil {
		return nil, err
	}
	return key, nil
}
