// Package notify surfaces failed user actions as notices.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
)

// Notice is what the user is shown when an action fails.
type Notice struct {
	Action  string         `json:"action"`
	Message string         `json:"message"`
	Context map[string]any `json:"-"`
	Err     error          `json:"-"`
}

type Notifier interface {
	Notify(ctx context.Context, n Notice)
}

// LogNotifier writes notices to the logger and, when Sentry has been
// initialised, captures the underlying error.
type LogNotifier struct {
	Log    logrus.FieldLogger
	Sentry bool
}

// InitSentry configures the global Sentry client. An empty dsn disables it.
func InitSentry(dsn, environment string) (bool, error) {
	if dsn == "" {
		return false, nil
	}
	err := sentry.Init(sentry.ClientOptions{Dsn: dsn, Environment: environment})
	if err != nil {
		return false, err
	}
	return true, nil
}

// Flush waits for buffered Sentry events.
func Flush() {
	sentry.Flush(2 * time.Second)
}

func (n *LogNotifier) Notify(ctx context.Context, notice Notice) {
	entry := n.Log.WithField("action", notice.Action)
	for k, v := range notice.Context {
		entry = entry.WithField(k, v)
	}
	if notice.Err != nil {
		entry = entry.WithError(notice.Err)
	}
	entry.Error(notice.Message)

	if !n.Sentry || notice.Err == nil {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("action", notice.Action)
		for k, v := range notice.Context {
			scope.SetExtra(k, v)
		}
		sentry.CaptureException(notice.Err)
	})
}

// Recorder keeps notices in memory. Used in tests.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *Recorder) Notify(_ context.Context, n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notice(nil), r.notices...)
}

var (
	_ Notifier = (*LogNotifier)(nil)
	_ Notifier = (*Recorder)(nil)
)
