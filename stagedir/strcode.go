package stagedir

import (
	"fmt"

	"golang.org/x/text/encoding/japanese"
)

// NameCode computes the 16-bit rolling checksum of a filename base that the
// archive stores in place of the name itself. The checksum runs over the
// name's EUC-JP bytes, not its Unicode code points, so multi-byte Japanese
// names hash exactly as the original tooling hashed them. Names outside the
// EUC-JP repertoire cannot be encoded and return an error.
func NameCode(name string) (uint16, error) {
	raw, err := japanese.EUCJP.NewEncoder().Bytes([]byte(name))
	if err != nil {
		return 0, fmt.Errorf("encoding %q as EUC-JP: %w", name, err)
	}
	var code uint16
	for _, b := range raw {
		code = code>>11 | code<<5
		code += uint16(b)
	}
	return code, nil
}
