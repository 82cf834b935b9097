// Package dashboard implements the pulse terminal dashboard.
//
// The dashboard shows the local machine (CPU, memory, disks, temperatures,
// network and processes) next to panels fed by background daemon caches
// (Tailscale, Kubernetes, cloud billing, Claude usage and quota) and an
// optional image gallery.
//
// # Architecture
//
// The package uses the Bubble Tea framework, which follows The Elm Architecture
// (Model-Update-View pattern):
//
//   - Model: Holds all dashboard state (snapshots, history, process table, tab)
//   - Update: Processes messages (keys, mouse, ticks, image results, theme)
//   - View: Renders the current state for the layout computed from the size
//
// # Message Flow
//
//  1. tickMsg fires at the refresh interval (250ms-5s, default 1s)
//  2. collect() polls the system collector and every cache collector whose
//     5s cadence is due, then updates history and the process tree
//  3. View() asks layout.Compute for a plan and renders each panel into it
//
// Ticks carry a generation number. Freezing stops the chain; resuming starts
// a new one and older ticks are dropped when they arrive.
//
// Image fetches run as tea.Cmds. Their results come back as imageMsg and are
// applied only when their token is still current.
//
// # Failure Handling
//
// A failing collector never blanks a panel: its snapshot keeps the last good
// data and the panel shows an error or stale badge next to its title.
package dashboard
