// Package msg defines the tea.Msg types exchanged between vscroll components
// that would otherwise import each other.
package msg

import (
	"github.com/miosa/vscroll/config"
	"github.com/miosa/vscroll/item"
)

// -- Config --

// ConfigReloaded is sent by the config watcher after vscroll.yaml changes.
// On a parse or validation error Config holds the defaults and Err is set;
// the app keeps its current settings in that case.
type ConfigReloaded struct {
	Config config.Config
	Err    error
}

// -- Dataset --

// ItemsGenerated carries a freshly generated or loaded dataset that replaces
// the current one wholesale. On a load error Items is nil and the app keeps
// the current dataset. Gen identifies the load that produced it; only the
// newest load is applied.
type ItemsGenerated struct {
	Items []item.Item
	Seed  uint64
	Repo  string // set when Items came from a commit log
	Gen   uint64
	Err   error
}
