package persist

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/mcdsl/watercarry/internal/config"
	"github.com/mcdsl/watercarry/internal/sim"
)

const (
	filePrefix = "VR1_log_"
	timeLayout = "2006-Jan-02_15-04-05"
	fileSuffix = ".csv"
)

// Header is the free-text block written at the top of every log.
type Header struct {
	SessionID   string
	Participant config.Participant
	SimName     string
	Description string
	Scene       string
	Days        int
	Fingerprint uint64
	Start       time.Time
}

// HeaderFor fills a Header from the session and its plan.
func HeaderFor(sessionID string, p config.Participant, plan *config.SimulationPlan, start time.Time) Header {
	h := Header{SessionID: sessionID, Participant: p, Start: start}
	if plan != nil {
		h.SimName = plan.SimName
		h.Description = plan.Description
		h.Scene = plan.Scene
		h.Days = plan.TotalDays()
		h.Fingerprint = plan.Fingerprint
	}
	return h
}

// FileName is the log name for participant starting at t.
func FileName(participant string, t time.Time) string {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			return r
		}
		return '_'
	}, strings.TrimSpace(participant))
	if clean == "" {
		clean = "anonymous"
	}
	return filePrefix + clean + "_" + t.Format(timeLayout) + fileSuffix
}

// CSV appends sim records to one log file per session. The file is opened
// and closed on every write so a crash loses at most one row.
type CSV struct {
	mu   sync.Mutex
	path string
}

// NewCSV creates the log in dir and writes the header block and the
// column row.
func NewCSV(dir string, h Header) (*CSV, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	path := filepath.Join(dir, FileName(h.Participant.Name, h.Start))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create log: %w", err)
	}
	defer f.Close()

	intro := []string{
		"Participant: " + h.Participant.Name,
		"Nausea sensitive: " + strconv.FormatBool(h.Participant.NauseaSensitive),
		"Claustrophobic sensitive: " + strconv.FormatBool(h.Participant.ClaustrophobicSensitive),
		"Session: " + h.SessionID,
		"Simulation: " + h.SimName,
		"Description: " + h.Description,
		"Scene: " + h.Scene,
		"Days: " + strconv.Itoa(h.Days),
		"Plan fingerprint: " + strconv.FormatUint(h.Fingerprint, 16),
		"Started: " + h.Start.Format(time.RFC3339),
		"",
	}
	if _, err := f.WriteString(strings.Join(intro, "\n") + "\n"); err != nil {
		return nil, fmt.Errorf("write log header: %w", err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(sim.Columns()); err != nil {
		return nil, fmt.Errorf("write log columns: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("write log columns: %w", err)
	}
	return &CSV{path: path}, nil
}

func (c *CSV) Path() string { return c.path }

// Persist appends one row. Failures are reported to Sentry and returned.
func (c *CSV) Persist(r sim.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.append(r.Values()); err != nil {
		err = fmt.Errorf("persist record: %w", err)
		sentry.CaptureException(err)
		return err
	}
	return nil
}

func (c *CSV) append(row []string) error {
	f, err := os.OpenFile(c.path, os.O_APPEND|os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if err := w.Write(row); err != nil {
		f.Close()
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
