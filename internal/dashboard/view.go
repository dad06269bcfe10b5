package dashboard

import (
	"context"

	"github.com/ilmari/storydesk/internal/domain"
)

// View selects between the grid and list presentation of the same
// ordered story window. Both renderers are configured up front; the
// active one follows the controller's view style, so toggling styles
// re-renders the identical sequence without refetching.
type View struct {
	controller *Controller
	grid       GridRenderer
	list       ListRenderer
}

// NewView creates a view over the controller with the given layouts.
func NewView(controller *Controller, grid GridConfig, list ListConfig) *View {
	return &View{
		controller: controller,
		grid:       NewGridRenderer(grid),
		list:       NewListRenderer(list),
	}
}

// Renderer returns the renderer for the active view style.
func (v *View) Renderer() Renderer {
	if v.controller.View() == domain.ViewStyleList {
		return v.list
	}
	return v.grid
}

// Render produces the printable lines for the story area: the rendered
// window plus a trailing loading, end-of-list or empty-state line.
func (v *View) Render() []string {
	stories := v.controller.OrderedStories()

	if len(stories) == 0 {
		if v.controller.IsLoading() {
			return []string{"Loading stories..."}
		}
		if msg := v.EmptyMessage(); msg != "" {
			return []string{msg}
		}
		return nil
	}

	lines := v.Renderer().Render(stories)
	switch {
	case v.controller.IsLoading():
		lines = append(lines, "", "Loading more stories...")
	case v.controller.AllPagesLoaded():
		lines = append(lines, "", v.EndMessage())
	}
	return lines
}

// NeedMore is the hook for the scroll collaborator: in grid view it
// advances pagination when the user nears the end of rendered content.
// The list view pages explicitly and ignores scroll pressure.
func (v *View) NeedMore(ctx context.Context) {
	if v.controller.View() != domain.ViewStyleGrid {
		return
	}
	v.controller.LoadMore(ctx)
}

// EmptyMessage returns the line shown in place of an empty window: a
// no-matches notice while a search is applied, a call to action
// otherwise.
func (v *View) EmptyMessage() string {
	total, _ := v.controller.Totals()
	if total != 0 {
		return ""
	}
	if v.controller.SearchTerm() != "" {
		return "No stories match your search."
	}
	return "No stories yet. Create your first story!"
}

// EndMessage returns the end-of-data line handed to the scroll
// collaborator once every page is loaded.
func (v *View) EndMessage() string {
	return "You have reached the end of the list."
}
