package shell

import (
	"github.com/jakebf/layershell/core"
	"github.com/jakebf/layershell/program"
)

// programWrapper owns the program and the UI trees built from it. A tree is
// only valid while the program it was built from is unchanged, so the
// program is mutated exclusively inside commit, which first turns every tree
// into its cache and rebuilds the trees once the mutation is done.
type programWrapper struct {
	program program.Program
	toolkit program.Toolkit
	// uis is nil while a commit is running.
	uis map[core.WindowID]program.UserInterface
}

func newProgramWrapper(p program.Program, toolkit program.Toolkit) *programWrapper {
	return &programWrapper{
		program: p,
		toolkit: toolkit,
		uis:     make(map[core.WindowID]program.UserInterface),
	}
}

func (pw *programWrapper) trees() map[core.WindowID]program.UserInterface {
	if pw.uis == nil {
		panic("shell: UI tree accessed while the program is being updated")
	}
	return pw.uis
}

func (pw *programWrapper) ui(id core.WindowID) (program.UserInterface, bool) {
	ui, ok := pw.trees()[id]
	return ui, ok
}

func (pw *programWrapper) set(id core.WindowID, ui program.UserInterface) {
	pw.trees()[id] = ui
}

func (pw *programWrapper) remove(id core.WindowID) {
	delete(pw.trees(), id)
}

// insert builds a fresh tree for a newly opened window.
func (pw *programWrapper) insert(w *Window) {
	pw.set(w.id, pw.build(w, nil))
}

func (pw *programWrapper) build(w *Window, cache program.Cache) program.UserInterface {
	view := pw.program.View(w.id)
	return pw.toolkit.Build(view, w.state.logicalSize(), cache, w.renderer)
}

// commit tears every tree down into its cache, hands the program to mutate
// for exclusive use and then rebuilds the trees of the windows that are
// still open against the new program state.
func (pw *programWrapper) commit(windows *WindowManager, mutate func(p program.Program)) {
	caches := make(map[core.WindowID]program.Cache, len(pw.trees()))
	for id, ui := range pw.uis {
		caches[id] = ui.IntoCache()
	}
	pw.uis = nil

	mutate(pw.program)

	pw.uis = make(map[core.WindowID]program.UserInterface, len(caches))
	windows.Each(func(id core.WindowID, w *Window) {
		cache, ok := caches[id]
		if !ok {
			return
		}
		pw.uis[id] = pw.build(w, cache)
	})
}

// reload rebuilds every tree through its cache against the unchanged
// program and asks every window for a new frame.
func (pw *programWrapper) reload(windows *WindowManager) {
	windows.Each(func(id core.WindowID, w *Window) {
		ui, ok := pw.ui(id)
		if !ok {
			return
		}
		pw.set(id, pw.build(w, ui.IntoCache()))
		w.requestRedraw(core.NextFrame)
	})
}
