package scanner

import (
	"bytes"
	"os"
	"strings"
)

// RPM lead magic
var rpmMagic = []byte{0xED, 0xAB, 0xEE, 0xDB}

// Offset and value of the lead type field marking a source package
const (
	leadTypeOffset = 6
	leadTypeSource = 1
)

// DetectPackageType determines the package type based on the RPM lead and
// file extension
func DetectPackageType(path string) (PackageType, error) {
	f, err := os.Open(path)
	if err != nil {
		return TypeUnknown, err
	}
	defer f.Close()

	header := make([]byte, 96)
	n, err := f.Read(header)
	if err != nil && n == 0 {
		return TypeUnknown, err
	}
	header = header[:n]

	if bytes.HasPrefix(header, rpmMagic) {
		if strings.HasSuffix(path, ".src.rpm") ||
			(len(header) > leadTypeOffset+1 && header[leadTypeOffset+1] == leadTypeSource) {
			return TypeSrpm, nil
		}
		return TypeRpm, nil
	}

	if strings.HasSuffix(path, ".src.rpm") {
		return TypeSrpm, nil
	}
	if strings.HasSuffix(path, ".rpm") {
		return TypeRpm, nil
	}

	return TypeUnknown, nil
}
