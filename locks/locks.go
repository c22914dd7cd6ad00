// Package locks serializes the check-then-act sequence of booking writes per
// room. RedisLocker coordinates several server instances; LocalLocker is
// enough for a single process.
package locks

import (
	"context"
	"errors"
)

// ErrLockTimeout is returned when a lock could not be acquired before the
// configured wait elapsed.
var ErrLockTimeout = errors.New("lock wait timeout")

type Locker interface {
	// Lock blocks until key is held or ctx is done. The returned func releases
	// the lock and is safe to call once.
	Lock(ctx context.Context, key string) (func(), error)
}

func RoomKey(roomID string) string {
	return "room:" + roomID
}
