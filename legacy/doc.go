// Package legacy binds the scope schedulers to a host that ticks the whole
// world on one primary thread.
//
// There is only one tick thread, so the global and region scopes share a
// single scheduler, entity tasks run on the primary thread and every
// ownership query reduces to "is this the primary thread".
package legacy
