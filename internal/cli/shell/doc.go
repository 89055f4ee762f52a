// Package shell provides the interactive mode of the sessiondx CLI.
//
// The shell presents a numbered action menu instead of a free-form command
// line: incident responders pick an action, answer prompts, and the shell
// keeps track of the session being worked on so its ID does not have to be
// re-entered for every step.
//
//   - shell.go: menu loop and action dispatch
//   - prompt.go: line and confirmation prompts
//   - history.go: persistence of entered values across runs
//   - watch.go: live log-level reload from the config file
//
// @design DS-0604
package shell
