package cli

import (
	"context"
	"strconv"
	"time"

	"github.com/dmitrijs2005/offsync/internal/client/replication"
	"github.com/dmitrijs2005/offsync/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/offsync/internal/client/store"
	"github.com/dmitrijs2005/offsync/internal/common"
	"github.com/dmitrijs2005/offsync/internal/timex"
	"github.com/spf13/cobra"
)

type pushView struct {
	Collection string `json:"collection"`
	Entries    int    `json:"entries"`
	Rows       int    `json:"rows"`
	Skipped    int    `json:"skipped"`
}

type pullView struct {
	Collection string `json:"collection"`
	Fetched    int    `json:"fetched"`
	Applied    int    `json:"applied"`
	Discarded  int    `json:"discarded"`
	Skipped    int    `json:"skipped"`
	Cursor     string `json:"cursor,omitempty"`
}

type syncView struct {
	Ran    bool       `json:"ran"`
	Pushes []pushView `json:"pushes"`
	Pulls  []pullView `json:"pulls"`
}

func (v *syncView) addPush(r replication.PushResult) {
	v.Pushes = append(v.Pushes, pushView{Collection: r.Collection, Entries: r.Entries, Rows: r.Rows, Skipped: r.Skipped})
}

func (v *syncView) addPull(r replication.PullResult) {
	pv := pullView{Collection: r.Collection, Fetched: r.Fetched, Applied: r.Applied, Discarded: r.Discarded, Skipped: r.Skipped}
	if !r.Cursor.IsZero() {
		pv.Cursor = timex.FormatTime(r.Cursor)
	}
	v.Pulls = append(v.Pulls, pv)
}

func (v *syncView) table() *table {
	t := &table{header: []string{"COLLECTION", "STEP", "SENT/FETCHED", "APPLIED", "SKIPPED"}}
	if !v.Ran {
		t.add("-", "skipped (offline)", "0", "0", "0")
		return t
	}
	for _, p := range v.Pushes {
		t.add(p.Collection, "push", strconv.Itoa(p.Rows), "-", strconv.Itoa(p.Skipped))
	}
	for _, p := range v.Pulls {
		t.add(p.Collection, "pull", strconv.Itoa(p.Fetched), strconv.Itoa(p.Applied), strconv.Itoa(p.Skipped))
	}
	return t
}

// NewSyncCommand creates "sync". With no flags it runs a full pass, which is
// skipped while the remote is unreachable. --collection, --push and --pull
// run single steps that report every error, unreachable included.
func NewSyncCommand(opts *RootOptions) *cobra.Command {
	var (
		collection string
		push, pull bool
	)
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Push the outbox and pull remote changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.App(cmd.Context())
			if err != nil {
				return err
			}
			p, err := opts.printer()
			if err != nil {
				return err
			}
			if a.identity.Owner == "" {
				return common.ErrUnauthenticated
			}

			var view *syncView
			if collection == "" && !push && !pull {
				view, err = syncAll(cmd.Context(), a)
			} else {
				view, err = syncSteps(cmd.Context(), a, collection, push || !pull, pull || !push)
			}
			if perr := p.print(view, view.table()); perr != nil && err == nil {
				err = perr
			}
			return err
		},
	}
	cmd.Flags().StringVar(&collection, "collection", "", "only this collection (albums, songs or messages)")
	cmd.Flags().BoolVar(&push, "push", false, "only push the outbox")
	cmd.Flags().BoolVar(&pull, "pull", false, "only pull remote changes")
	return cmd
}

func syncAll(ctx context.Context, a *App) (*syncView, error) {
	a.watcher.Check(ctx)
	rep, err := a.engine.SyncAll(ctx, a.identity.Owner)
	view := &syncView{Ran: rep.Ran}
	for _, r := range rep.Pushes {
		view.addPush(r)
	}
	for _, r := range rep.Pulls {
		view.addPull(r)
	}
	return view, err
}

func syncSteps(ctx context.Context, a *App, collection string, push, pull bool) (*syncView, error) {
	names := a.engine.Collections()
	if collection != "" {
		names = []string{collection}
	}

	view := &syncView{Ran: true}
	owner := a.identity.Owner
	if push {
		for _, name := range names {
			res, err := a.engine.Push(ctx, owner, name)
			view.addPush(res)
			if err != nil {
				return view, err
			}
		}
	}
	if pull {
		for _, name := range names {
			res, err := a.engine.Pull(ctx, owner, name)
			view.addPull(res)
			if err != nil {
				return view, err
			}
		}
	}
	return view, nil
}

type outboxView struct {
	Pending  map[string]int64 `json:"pending"`
	Total    int64            `json:"total"`
	LastSync string           `json:"last_sync,omitempty"`
}

// NewOutboxCommand creates "outbox", which reports what the next push would send.
func NewOutboxCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "outbox",
		Short: "Show pending outbox entries per collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.App(cmd.Context())
			if err != nil {
				return err
			}
			p, err := opts.printer()
			if err != nil {
				return err
			}

			view := outboxView{Pending: make(map[string]int64)}
			var lastSync time.Time
			err = a.store.View(cmd.Context(), func(ctx context.Context, r *store.Repos) error {
				counts, err := r.Outbox.CountByCollection(ctx)
				if err != nil {
					return err
				}
				for _, name := range a.engine.Collections() {
					view.Pending[name] = counts[name]
				}
				for _, n := range counts {
					view.Total += n
				}
				last, ok, err := metadata.GetTime(ctx, r.Metadata, metadata.KeyLastSync)
				if ok {
					lastSync = last
					view.LastSync = last.Format(time.RFC3339)
				}
				return err
			})
			if err != nil {
				return err
			}

			t := &table{header: []string{"COLLECTION", "PENDING"}}
			for _, name := range a.engine.Collections() {
				t.add(name, strconv.FormatInt(view.Pending[name], 10))
			}
			t.add("total", strconv.FormatInt(view.Total, 10))
			last := "never"
			if !lastSync.IsZero() {
				last = lastSync.Local().Format(time.DateTime)
			}
			t.add("last sync", last)
			return p.print(view, t)
		},
	}
}
