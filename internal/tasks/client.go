package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mikestefanello/backlite"
)

var errNoTaskID = errors.New("no task id returned")

// Client owns the bookstore's background queue: a backlite client running
// on its own SQLite file so that workers never contend with request writes.
type Client struct {
	queue  *backlite.Client
	db     *sql.DB
	config Config

	mu      sync.Mutex
	running bool
}

// NewClient opens (or creates) the queue database next to mainDBPath and
// installs the backlite schema into it.
func NewClient(mainDBPath string, cfg Config) (*Client, error) {
	db, err := openQueueDB(DatabasePath(mainDBPath), cfg.Workers)
	if err != nil {
		return nil, err
	}

	setQueueDefaults(cfg)

	queue, err := backlite.NewClient(backlite.ClientConfig{
		DB:              db,
		NumWorkers:      cfg.Workers,
		ReleaseAfter:    cfg.ReleaseAfter,
		CleanupInterval: cfg.CleanupInterval,
		Logger:          queueLogger{},
	})
	if err == nil {
		err = queue.Install()
	}
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("set up task queue: %w", err)
	}

	return &Client{queue: queue, db: db, config: cfg}, nil
}

func openQueueDB(path string, workers int) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path+"?_journal=WAL&_timeout=5000&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open task database %s: %w", path, err)
	}
	// Every worker holds a connection while it runs; leave room for enqueues.
	db.SetMaxOpenConns(workers + 5)
	db.SetMaxIdleConns(workers + 2)
	db.SetConnMaxLifetime(time.Hour)
	return db, nil
}

// DatabasePath returns the queue database path for a main database path:
// "shop.db" becomes "shop-tasks.db" in the same directory.
func DatabasePath(mainDBPath string) string {
	base := filepath.Base(mainDBPath)
	ext := filepath.Ext(base)
	if ext == "" {
		ext = ".db"
	}
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(filepath.Dir(mainDBPath), name+"-tasks"+ext)
}

// Register adds queues to the client. Call it before Start.
func (c *Client) Register(queues ...backlite.Queue) {
	for _, q := range queues {
		c.queue.Register(q)
	}
}

// Start runs the workers until ctx is cancelled or Stop is called.
// Calling it a second time is a no-op.
func (c *Client) Start(ctx context.Context) {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return
	}
	c.running = true
	c.mu.Unlock()

	log.Printf("[TASK] Queue started with %d workers", c.config.Workers)
	c.queue.Start(ctx)
}

// Stop waits for in-flight tasks. It reports false when ctx expired first.
func (c *Client) Stop(ctx context.Context) bool {
	c.mu.Lock()
	running := c.running
	c.mu.Unlock()
	if !running {
		return true
	}

	finished := c.queue.Stop(ctx)
	if finished {
		log.Println("[TASK] Queue stopped")
	} else {
		log.Println("[TASK ERROR] Queue stop timed out, some tasks were interrupted")
	}
	return finished
}

// Close releases the queue database. Call it after Stop.
func (c *Client) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Enqueue persists one task and returns the id backlite assigned to it.
func (c *Client) Enqueue(task backlite.Task) (string, error) {
	name := task.Config().Name
	ids, err := c.queue.Add(task).Save()
	if err == nil && len(ids) == 0 {
		err = errNoTaskID
	}
	if err != nil {
		return "", fmt.Errorf("enqueue %s: %w", name, err)
	}
	return ids[0], nil
}

// Status reports where a previously enqueued task is in its lifecycle.
func (c *Client) Status(ctx context.Context, taskID string) (backlite.TaskStatus, error) {
	return c.queue.Status(ctx, taskID)
}

// Ping checks that the queue database answers.
func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// queueLogger routes backlite's own messages through the standard logger.
type queueLogger struct{}

func (queueLogger) Info(message string, params ...any) {
	log.Printf("[TASK] "+message, params...)
}

func (queueLogger) Error(message string, params ...any) {
	log.Printf("[TASK ERROR] "+message, params...)
}
