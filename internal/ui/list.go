package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/hlsx/internal/formatter"
	"github.com/desertthunder/hlsx/internal/models"
)

var _ list.Item = checkRunItem{}

// checkRunItem wraps [models.CheckRun] to implement [list.Item].
type checkRunItem struct {
	run *models.CheckRun
}

func (i checkRunItem) FilterValue() string { return i.run.URL() }
func (i checkRunItem) Title() string {
	return fmt.Sprintf("%s %s", styles.Label(i.run.Severity()), i.run.URL())
}
func (i checkRunItem) Description() string {
	desc := fmt.Sprintf("%s • %s", i.run.Kind(), formatter.Timestamp(i.run.CreatedAt()))
	if i.run.Profile() != "" {
		desc = fmt.Sprintf("%s • profile %s", desc, i.run.Profile())
	}
	if i.run.Message() != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.run.Message())
	}
	return desc
}
