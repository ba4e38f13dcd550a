package main

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"pkt.systems/pslog"

	"github.com/jakebf/layershell/core"
	"github.com/jakebf/layershell/internal/config"
	"github.com/jakebf/layershell/internal/widget"
	"github.com/jakebf/layershell/program"
	"github.com/jakebf/layershell/runtime"
	"github.com/jakebf/layershell/system"
)

const statusTTL = 2 * time.Second

// note is one window's scratch state.
type note struct {
	clicks int
	draft  string
	lines  []string
}

// app is the demo program: every layer window is an independent scratch pad
// with a click counter and a list of notes.
type app struct {
	cfg     config.Config
	cfgPath string
	log     pslog.Logger

	// extra is the number of windows opened at boot besides the one the
	// shell opens itself.
	extra int

	notes    map[core.WindowID]*note
	info     string
	started  time.Time
	now      time.Time
	status   string
	statusID int
}

func newApp(cfg config.Config, cfgPath string, log pslog.Logger, extra int) *app {
	now := time.Now()
	return &app{
		cfg:     cfg,
		cfgPath: cfgPath,
		log:     log,
		extra:   extra,
		notes:   make(map[core.WindowID]*note),
		started: now,
		now:     now,
	}
}

func (a *app) Boot() runtime.Task {
	tasks := make([]runtime.Task, 0, a.extra)
	for range a.extra {
		tasks = append(tasks, runtime.Done(openWindowMsg{}))
	}
	return runtime.Batch(tasks...)
}

// note returns the state of id, creating it on first use. Only Update may
// call it.
func (a *app) note(id core.WindowID) *note {
	n, ok := a.notes[id]
	if !ok {
		n = &note{}
		a.notes[id] = n
	}
	return n
}

func (a *app) setStatus(text string) runtime.Task {
	a.statusID++
	a.status = text
	id := a.statusID
	return runtime.Perform(func(ctx context.Context) struct{} {
		select {
		case <-time.After(statusTTL):
		case <-ctx.Done():
		}
		return struct{}{}
	}, func(struct{}) any { return statusClearMsg{id: id} })
}

func (a *app) Update(msg any) runtime.Task {
	switch msg := msg.(type) {
	case incrementMsg:
		a.note(msg.window).clicks++

	case draftChangedMsg:
		a.note(msg.window).draft = msg.value

	case noteSubmittedMsg:
		n := a.note(msg.window)
		if text := strings.TrimSpace(n.draft); text != "" {
			n.lines = append(n.lines, text)
		}
		n.draft = ""

	case openWindowMsg:
		id, open := runtime.OpenLayer(a.cfg.LayerSettings(), func(id core.WindowID) any {
			return windowOpenedMsg{window: id}
		})
		a.note(id)
		a.log.Debug("opening window", "window", uint64(id))
		return open

	case windowOpenedMsg:
		a.note(msg.window)
		if a.info == "" {
			return runtime.QueryInformation(func(info system.Information) any {
				return infoLoadedMsg{info: info}
			})
		}

	case closeWindowMsg:
		return runtime.CloseLayer(msg.window)

	case windowClosedMsg:
		delete(a.notes, msg.window)

	case focusNextMsg:
		return runtime.Operate(core.FocusNext())

	case copyNotesMsg:
		n := a.note(msg.window)
		if len(n.lines) == 0 {
			return a.setStatus("Nothing to copy")
		}
		return runtime.Batch(
			runtime.WriteClipboard(core.ClipboardStandard, strings.Join(n.lines, "\n")),
			a.setStatus(fmt.Sprintf("Copied %d notes", len(n.lines))),
		)

	case quitMsg:
		return runtime.Exit()

	case configChangedMsg:
		cfg, err := config.Load(a.cfgPath)
		if err != nil {
			a.log.Warn("config reload failed", "err", err)
			return a.setStatus("Config error: " + err.Error())
		}
		a.cfg = cfg
		a.log.Info("config reloaded", "path", a.cfgPath)
		return runtime.Batch(runtime.Reload(), a.setStatus("Config reloaded"))

	case infoLoadedMsg:
		a.info = msg.info.String()

	case tickMsg:
		a.now = time.Time(msg)

	case statusClearMsg:
		if msg.id == a.statusID {
			a.status = ""
		}
	}
	return runtime.None()
}

func (a *app) View(id core.WindowID) program.Element {
	n := a.notes[id]
	if n == nil {
		n = &note{}
	}
	children := []program.Element{
		widget.Markdown{ID: "header", Source: a.header(id), Style: a.cfg.MarkdownStyle},
		widget.Text{ID: "clicks", Content: fmt.Sprintf("Clicks: %d", n.clicks)},
		widget.Button{ID: "increment", Label: "Increment", OnPress: incrementMsg{window: id}},
		widget.TextInput{
			ID:          "draft",
			Placeholder: "Type a note and press Enter",
			Value:       n.draft,
			OnInput:     func(v string) any { return draftChangedMsg{window: id, value: v} },
			OnSubmit:    noteSubmittedMsg{window: id},
		},
	}
	for i, line := range n.lines {
		children = append(children, widget.Text{ID: fmt.Sprintf("note-%d", i), Content: "• " + line})
	}
	children = append(children,
		widget.Button{ID: "open", Label: "New window", OnPress: openWindowMsg{}},
		widget.Button{ID: "copy", Label: "Copy notes", OnPress: copyNotesMsg{window: id}},
		widget.Button{ID: "close", Label: "Close", OnPress: closeWindowMsg{window: id}},
		widget.Button{ID: "quit", Label: "Quit", OnPress: quitMsg{}},
		widget.Text{ID: "status", Content: a.footer()},
	)
	return widget.Column{Children: children, Padding: core.Padding{Left: 1, Right: 1}}
}

func (a *app) header(id core.WindowID) string {
	ids := slices.Sorted(maps.Keys(a.notes))
	pos := slices.Index(ids, id) + 1
	return fmt.Sprintf("## Window %d of %d", max(pos, 1), max(len(ids), 1))
}

func (a *app) footer() string {
	if a.status != "" {
		return a.status
	}
	up := a.now.Sub(a.started).Truncate(time.Second)
	if a.info == "" {
		return "up " + up.String()
	}
	return fmt.Sprintf("up %s · %s", up, a.info)
}

func (a *app) Subscription() runtime.Subscription {
	subs := []runtime.Subscription{
		runtime.ListenWith("app", listen),
		runtime.Every(time.Second, func(t time.Time) any { return tickMsg(t) }),
	}
	if path := a.cfgPath; path != "" {
		subs = append(subs, runtime.Stream("config:"+path, func(ctx context.Context, emit func(any) error) error {
			var emitErr error
			err := config.Watch(ctx, path, func() {
				if emitErr == nil {
					emitErr = emit(configChangedMsg{})
				}
			})
			if err != nil {
				return err
			}
			return emitErr
		}))
	}
	return runtime.BatchSubscriptions(subs...)
}

// listen turns window lifecycle events and unhandled shortcuts into
// messages.
func listen(ev runtime.Event) (any, bool) {
	in, ok := ev.(runtime.Interaction)
	if !ok {
		return nil, false
	}
	switch e := in.Event.(type) {
	case core.LayerOpened:
		return windowOpenedMsg{window: in.Window}, true
	case core.WindowClosed:
		return windowClosedMsg{window: in.Window}, true
	case core.KeyPressed:
		if in.Status != core.StatusIgnored {
			return nil, false
		}
		switch {
		case e.Key == core.NamedKey(core.NamedTab):
			return focusNextMsg{}, true
		case e.Key == core.NamedKey(core.NamedEscape):
			return closeWindowMsg{window: in.Window}, true
		case e.Modifiers.Control() && strings.EqualFold(e.Key.Character, "o"):
			return openWindowMsg{}, true
		}
	}
	return nil, false
}

func (a *app) Title(id core.WindowID) string {
	return fmt.Sprintf("%s #%d", a.cfg.Namespace, id)
}

func (a *app) Theme(core.WindowID) core.Theme {
	if a.cfg.MarkdownStyle == "light" {
		return core.ThemeLight
	}
	return core.ThemeDark
}

func (a *app) Style(theme core.Theme) core.Style { return core.DefaultStyle(theme) }

func (a *app) ScaleFactor(core.WindowID) float64 { return 1 }
