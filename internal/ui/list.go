package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/sogik/TuneHarvester/internal/models"
)

var _ list.Item = trackItem{}

// trackItem wraps [models.QueryDescriptor] to implement [list.Item].
type trackItem struct {
	descriptor models.QueryDescriptor
}

func (i trackItem) FilterValue() string { return i.descriptor.Query }
func (i trackItem) Title() string       { return i.descriptor.Query }
func (i trackItem) Description() string {
	desc := i.descriptor.Source.String()
	if i.descriptor.Position > 0 {
		desc = fmt.Sprintf("#%d • %s", i.descriptor.Position, desc)
	}
	return desc
}
