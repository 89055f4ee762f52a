// Package confloader provides configuration loading mechanism.
//
// It uses Koanf for flexible configuration loading from multiple
// sources with priority: Flag > Env > File > Default. A companion
// fsnotify watcher lets the interactive shell pick up config edits
// (log level, output format) without restarting.
//
// @req RQ-0502
// @design DS-0502
package confloader
