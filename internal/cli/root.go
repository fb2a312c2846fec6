// Package cli implements the command-line interface for rubikal.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/SeamusWaldron/rubikal"
	"github.com/SeamusWaldron/rubikal/internal/config"
	"github.com/SeamusWaldron/rubikal/internal/logging"
	"github.com/SeamusWaldron/rubikal/internal/recorder"
	"github.com/SeamusWaldron/rubikal/internal/storage"
)

const version = "0.1.0"

var (
	// Global flags
	configPath string
	dbPath     string
	logFile    string
	verbose    bool
	noJournal  bool

	// Loaded in PersistentPreRunE
	cfg    config.Config
	logger = logging.Discard()
)

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "rubikal",
	Short: "Animated 3x3x3 cube engine",
	Long: `Rubikal - an animated 3x3x3 cube engine.

Queue face turns from the command line, the keyboard, a websocket viewer or
a GoCube smart cube, watch them animate one at a time, and keep a journal of
every completed rotation.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Close()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (default: ~/.rubikal/config.json)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database file path (default: ~/.rubikal/rubikal.db)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write debug logs to this file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&noJournal, "no-journal", false, "Do not record rotations to the database")
}

func setup(cmd *cobra.Command, args []string) error {
	if configPath == "" {
		path, err := config.DefaultPath()
		if err != nil {
			return err
		}
		configPath = path
	}

	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	cfg = loaded
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	if logFile != "" {
		cfg.LogPath = logFile
	}

	l, err := logging.New(logging.Options{Verbose: verbose, LogFile: cfg.LogPath})
	if err != nil {
		return err
	}
	logger = l
	logger.Debug("config loaded", "path", configPath)
	return nil
}

// newCube builds a cube from the loaded config.
func newCube(extra ...rubikal.Option) (*rubikal.Cube, error) {
	opts := append(cfg.Options(), rubikal.WithLogger(logger.Logger))
	return rubikal.New(append(opts, extra...)...)
}

// chainHooks combines completion hooks into one, skipping nils.
func chainHooks(hooks ...func(rubikal.RotationEvent)) func(rubikal.RotationEvent) {
	return func(ev rubikal.RotationEvent) {
		for _, h := range hooks {
			if h != nil {
				h(ev)
			}
		}
	}
}

func openStateFile() (*recorder.StateFile, error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, err
	}
	return recorder.NewStateFile(filepath.Join(dir, "state.json"))
}

func openDB() (*storage.DB, error) {
	path, err := cfg.ResolveDBPath()
	if err != nil {
		return nil, err
	}

	db, err := storage.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.MigrateUp(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return db, nil
}

// journal is an open recording session. A nil journal records nothing.
type journal struct {
	db      *storage.DB
	session *recorder.Session
}

// startJournal opens the database and starts a session for source, unless
// --no-journal was given.
func startJournal(source string) (*journal, error) {
	if noJournal {
		return nil, nil
	}

	db, err := openDB()
	if err != nil {
		return nil, err
	}

	state, err := openStateFile()
	if err != nil {
		db.Close()
		return nil, err
	}

	session := recorder.NewSession(db, state, logger.Logger)
	if _, err := session.Start(source, ""); err != nil {
		db.Close()
		return nil, err
	}
	return &journal{db: db, session: session}, nil
}

func (j *journal) hook() func(rubikal.RotationEvent) {
	if j == nil {
		return nil
	}
	return j.session.Hook()
}

func (j *journal) status() string {
	if j == nil {
		return ""
	}
	return fmt.Sprintf("Session %s  recorded %d", shortID(j.session.SessionID()), j.session.Count())
}

func (j *journal) close() {
	if j == nil {
		return
	}
	if err := j.session.End(); err != nil {
		logger.Warn("failed to end session", "error", err)
	} else {
		logger.Info("session saved", "session", j.session.SessionID(), "rotations", j.session.Count())
	}
	j.db.Close()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
