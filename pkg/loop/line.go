package loop

import "strconv"

// MaxLineLength is the longest line AppendLine can produce:
// three signed 64-bit values, one signed 32-bit value, three spaces and a newline.
// At 115200 baud (11520 bytes/s) a typical 30 byte line allows ~380 lines/s,
// so the default 500us period is only sustainable at higher link speeds or
// over USB CDC.
const MaxLineLength = 3*20 + 11 + 3 + 1

// AppendLine appends "<x> <y> <z> <delta>\n" to dst.
func AppendLine(dst []byte, x, y, z int, delta int32) []byte {
	dst = strconv.AppendInt(dst, int64(x), 10)
	dst = append(dst, ' ')
	dst = strconv.AppendInt(dst, int64(y), 10)
	dst = append(dst, ' ')
	dst = strconv.AppendInt(dst, int64(z), 10)
	dst = append(dst, ' ')
	dst = strconv.AppendInt(dst, int64(delta), 10)
	return append(dst, '\n')
}
