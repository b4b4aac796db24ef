// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package interp

// access mode bits, matching the values from POSIX's unistd.h and
// golang.org/x/sys/unix's R_OK/W_OK/X_OK.
const (
	access_R_OK = 4
	access_W_OK = 2
	access_X_OK = 1
)
