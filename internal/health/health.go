// Package health reports process and session health for the relay.
package health

import (
	"encoding/json"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/gorilla/mux"
	"github.com/pcparts/notify-relay/internal/notify"
	"github.com/pcparts/notify-relay/internal/registry"
	"github.com/shirou/gopsutil/v3/process"
	"go.uber.org/zap"
)

// SessionCounter reports connected sessions per channel.
type SessionCounter interface {
	Counts() map[notify.Channel]int
}

// SessionLister lists registered sessions, oldest first.
type SessionLister interface {
	Sessions() []registry.Session
}

// AdminSession is the public view of a registered admin connection.
type AdminSession struct {
	ID          string    `json:"id"`
	ConnectedAt time.Time `json:"connectedAt"`
}

type Snapshot struct {
	Status     string                 `json:"status"`
	Uptime     string                 `json:"uptime"`
	StartedAt  time.Time              `json:"startedAt"`
	Goroutines int                    `json:"goroutines"`
	RSSBytes   uint64                 `json:"rssBytes"`
	CPUPercent float64                `json:"cpuPercent"`
	Sessions   map[notify.Channel]int `json:"sessions"`
	Registered int                    `json:"registeredAdmins"`
	Admins     []AdminSession         `json:"admins"`
}

type Reporter struct {
	sessions SessionCounter
	admins   SessionLister
	started  time.Time
	proc     *process.Process
	log      *zap.Logger
}

func NewReporter(sessions SessionCounter, admins SessionLister, log *zap.Logger) *Reporter {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Reporter{
		sessions: sessions,
		admins:   admins,
		started:  time.Now(),
		log:      log,
	}
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		log.Warn("process stats unavailable", zap.Error(err))
	} else {
		r.proc = proc
	}
	return r
}

// Snapshot never fails; unavailable process stats are reported as zero.
func (r *Reporter) Snapshot() Snapshot {
	s := Snapshot{
		Status:     "ok",
		Uptime:     time.Since(r.started).Round(time.Second).String(),
		StartedAt:  r.started,
		Goroutines: runtime.NumGoroutine(),
		Sessions:   r.sessions.Counts(),
		Admins:     []AdminSession{},
	}
	if r.admins != nil {
		for _, a := range r.admins.Sessions() {
			s.Admins = append(s.Admins, AdminSession{ID: a.ID, ConnectedAt: a.ConnectedAt})
		}
		s.Registered = len(s.Admins)
	}

	if r.proc != nil {
		if mem, err := r.proc.MemoryInfo(); err == nil {
			s.RSSBytes = mem.RSS
		} else {
			r.log.Debug("memory info", zap.Error(err))
		}
		if cpu, err := r.proc.CPUPercent(); err == nil {
			s.CPUPercent = cpu
		} else {
			r.log.Debug("cpu percent", zap.Error(err))
		}
	}
	return s
}

func (r *Reporter) Mount(m *mux.Router) {
	m.HandleFunc("/healthz", r.handleHealth).Methods(http.MethodGet)
}

func (r *Reporter) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(r.Snapshot())
}
