package runstore

import (
	"encoding/hex"
	"os"
	"path/filepath"

	"lukechampine.com/blake3"

	"github.com/myopic/ecosim/ecoerr"
)

// WriteChecksum hashes the file at srcPath with blake3 and writes the hex
// digest to checksums/<basename>.blake3.
func WriteChecksum(l Layout, srcPath string) error {
	const op = "runstore.WriteChecksum"
	data, err := os.ReadFile(srcPath)
	if err != nil {
		return ecoerr.Wrap(ecoerr.IOFailure, op, err)
	}
	sum := blake3.Sum256(data)
	digest := hex.EncodeToString(sum[:])

	dst := filepath.Join(l.ChecksumsDir(), filepath.Base(srcPath)+".blake3")
	if err := os.WriteFile(dst, []byte(digest+"\n"), 0o644); err != nil {
		return ecoerr.Wrap(ecoerr.IOFailure, op, err)
	}
	return nil
}

// WriteChecksums hashes every artifact file in a finished run directory.
func WriteChecksums(l Layout) error {
	for _, path := range []string{
		l.Manifest(),
		l.Scenario(),
		l.Deltas(),
		l.FieldStats(),
		l.Hydrology(),
		l.Structure(),
		l.Events(),
	} {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := WriteChecksum(l, path); err != nil {
			return err
		}
	}
	return nil
}

// VerifyChecksum reports whether srcPath's current contents match its
// recorded checksum, returning a DeterminismViolation error if not.
func VerifyChecksum(l Layout, srcPath string) error {
	const op = "runstore.VerifyChecksum"
	data, err := os.ReadFile(srcPath)
	if err != nil {
		return ecoerr.Wrap(ecoerr.IOFailure, op, err)
	}
	sum := blake3.Sum256(data)
	digest := hex.EncodeToString(sum[:])

	recordedPath := filepath.Join(l.ChecksumsDir(), filepath.Base(srcPath)+".blake3")
	recorded, err := os.ReadFile(recordedPath)
	if err != nil {
		return ecoerr.Wrap(ecoerr.IOFailure, op, err)
	}
	want := string(recorded[:len(recorded)-1])
	if digest != want {
		return ecoerr.New(ecoerr.DeterminismViolation, op, "checksum mismatch for "+srcPath)
	}
	return nil
}
