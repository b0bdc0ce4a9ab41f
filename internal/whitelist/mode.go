package whitelist

import (
	"fmt"

	"github.com/ralt/rpmaudit/internal/models"
)

// Unix file type and permission bits
const (
	modeSocket = 0140000
	modeBlock  = 0060000
	modeChar   = 0020000
	modeFIFO   = 0010000
	modeSetUID = 04000
	modeSetGID = 02000
	modeSticky = 01000
)

var fileTypes = map[byte]int{
	'-': models.ModeRegular,
	'd': models.ModeDirectory,
	'l': models.ModeSymlink,
	'c': modeChar,
	'b': modeBlock,
	's': modeSocket,
	'p': modeFIFO,
}

// ParseMode converts a 10 character "ls -l" mode string such as "-rwsr-xr-x"
// into a numeric Unix mode
func ParseMode(s string) (int, error) {
	if len(s) != 10 {
		return 0, fmt.Errorf("invalid mode string %q: want 10 characters", s)
	}

	mode, ok := fileTypes[s[0]]
	if !ok {
		return 0, fmt.Errorf("invalid mode string %q: unknown file type %q", s, s[0])
	}

	// one triplet per class: read bit, write bit, exec bit and the special
	// bit carried in the exec column
	classes := []struct {
		shift   uint
		special int
		set     byte
	}{
		{6, modeSetUID, 's'},
		{3, modeSetGID, 's'},
		{0, modeSticky, 't'},
	}

	for i, c := range classes {
		r, w, x := s[1+3*i], s[2+3*i], s[3+3*i]

		switch r {
		case 'r':
			mode |= 4 << c.shift
		case '-':
		default:
			return 0, fmt.Errorf("invalid mode string %q", s)
		}

		switch w {
		case 'w':
			mode |= 2 << c.shift
		case '-':
		default:
			return 0, fmt.Errorf("invalid mode string %q", s)
		}

		switch x {
		case 'x':
			mode |= 1 << c.shift
		case c.set:
			mode |= 1<<c.shift | c.special
		case c.set - 'a' + 'A':
			mode |= c.special
		case '-':
		default:
			return 0, fmt.Errorf("invalid mode string %q", s)
		}
	}

	return mode, nil
}
