//go:build !unix

package tlog

import "os"

// advisory locking is only available on unix, elsewhere it is a no-op
func lockFile(f *os.File) error { return nil }

func unlockFile(f *os.File) error { return nil }
