package main

import (
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/daemon"
	"github.com/kardianos/osext"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"

	gigboard "github.com/derWhity/gigboard/internal"
	"github.com/derWhity/gigboard/internal/ctxhelper"
	"github.com/derWhity/gigboard/internal/log"
	"github.com/derWhity/gigboard/internal/migrate"
	"github.com/derWhity/gigboard/internal/repos"
	artistrepo "github.com/derWhity/gigboard/internal/repos/artist/sqlite"
	showrepo "github.com/derWhity/gigboard/internal/repos/show/sqlite"
	venuerepo "github.com/derWhity/gigboard/internal/repos/venue/sqlite"
)

const (
	appName    = "Gigboard"
	appVersion = "0.1.0"
)

// Checks and tries to create the given directory recursively (or panics if this fails)
func checkAndCreateDir(path string, logger *logrus.Entry) {
	fileInfo, err := os.Stat(path)
	if err != nil {
		if e, ok := err.(*os.PathError); ok && e.Err == syscall.ENOENT {
			logger.WithField(log.FldPath, path).Info("Directory does not exist - trying to create...")
			if err = os.MkdirAll(path, os.ModePerm); err != nil {
				logger.WithError(err).Fatal("Failed to create directory")
			}
			logger.Info("Directory created successfully")
		} else {
			logger.WithError(err).Fatal("Stat has failed")
		}
	} else {
		if !fileInfo.IsDir() {
			logger.Fatalf("'%s' is not a directory. Remove the plain file if you want to continue", path)
		}
	}
}

func main() {
	execDir, err := osext.ExecutableFolder()
	if err != nil {
		panic(err)
	}

	configFile := flag.String(
		"config",
		filepath.Join(execDir, "config.json"),
		"The configuration file to load the application's configuration from",
	)
	envFile := flag.String(
		"env",
		".env",
		"An optional .env file to load environment overrides from",
	)
	flag.Parse()

	ctx := context.Background()

	// Initialize the logger
	logger := logrus.WithField(log.FldVersion, appVersion)
	logger.Infof("%s version %s is starting up...", appName, appVersion)
	ctx = ctxhelper.WithLogger(ctx, logger)

	// Load the main configuration file
	cs := gigboard.NewConfigService(*configFile)
	if err := cs.Load(ctx); err != nil {
		logger.WithError(err).Error("Cannot load config. Using defaults")
		if os.IsNotExist(errors.Cause(err)) {
			// Leave a template for the next start
			if err := cs.Write(ctx); err != nil {
				logger.WithError(err).Warn("Failed to write default configuration")
			}
		}
	}
	if err := cs.ApplyEnvironment(ctx, *envFile, filepath.Join(execDir, ".env")); err != nil {
		logger.WithError(err).Fatal("Failed to apply environment configuration")
	}
	conf := cs.GetConfig(ctx)

	if level, err := logrus.ParseLevel(conf.LogLevel); err == nil {
		logrus.SetLevel(level)
	}

	logger.Infof("Using '%s' as data directory", conf.DataDir)
	checkAndCreateDir(conf.DataDir, logger)

	// Set up the database connection and perform pending migrations
	dbFileName := path.Join(conf.DataDir, conf.DBFile)
	db, err := repos.OpenSQLite(dbFileName)
	if err != nil {
		logger.WithError(err).WithField(log.FldFile, dbFileName).Fatal("Failed to open database connection")
	}
	defer db.Close()
	logger.Info("Performing database migrations...")
	if err = migrate.ExecuteMigrationsOnDb(db, logger); err != nil {
		logger.WithError(err).Fatal("Database migration has failed. Please check database for consistency and try again.")
	}

	venueRepo := venuerepo.New(db, logger)
	artistRepo := artistrepo.New(db, logger)
	showRepo := showrepo.New(db, logger)

	vSrv := gigboard.NewVenueService(venueRepo, showRepo, logger)
	aSrv := gigboard.NewArtistService(artistRepo, showRepo, logger)
	sSrv := gigboard.NewShowService(showRepo, logger)

	httpLogger := logger.WithField(log.FldTransport, "HTTP")

	h := gigboard.MakeHTTPHandler(
		vSrv,
		aSrv,
		sSrv,
		httpLogger,
	)
	srv := &http.Server{
		Addr:              conf.ListenAddress,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start listening
	errs := make(chan error)

	// Listen for stop signals that will end the service
	go func() {
		c := make(chan os.Signal, 2)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		err := fmt.Errorf("%s", <-c)
		logger.Info("Caught signal to stop. Shutting down.")
		daemon.SdNotify(false, "STOPPING=1")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Warn("HTTP server did not shut down cleanly")
		}
		errs <- err
	}()

	go func() {
		httpLogger.WithField("addr", conf.ListenAddress).Info("Starting listening port")
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			errs <- err
		}
	}()

	// Watchdog for systemd
	go func() {
		interval, err := daemon.SdWatchdogEnabled(false)
		if err != nil || interval == 0 {
			return
		}
		logger.Info("Activating systemd watchdog goroutine")
		_, port, err := net.SplitHostPort(conf.ListenAddress)
		if err != nil {
			logger.WithError(err).Error("Cannot determine port for the watchdog")
			return
		}
		url := fmt.Sprintf("http://127.0.0.1:%s/alive", port)
		for {
			if resp, err := http.Get(url); err == nil {
				resp.Body.Close()
				daemon.SdNotify(false, "WATCHDOG=1")
			}
			time.Sleep(interval / 3)
		}
	}()

	// Notify systemd that we are ready to go (if available)
	daemon.SdNotify(false, "READY=1")

	logger.WithError(<-errs).Error("Shutdown complete")
}
