package common

import (
	"math/rand"
	"os"
	"path"
	"path/filepath"
	"strconv"
)

func MkdirForFile(fileName string) error {
	if err := os.MkdirAll(filepath.Dir(fileName), os.ModePerm); err != nil {
		return err
	}
	return nil
}

func OpenTempFile(fullPath string) (f *os.File, err error) {
	fileNameTmp := fullPath + "." + strconv.Itoa(rand.Int())
	return os.OpenFile(fileNameTmp, os.O_RDWR|os.O_CREATE|os.O_EXCL, os.ModePerm)
}

func ReplaceFileExt(fileName string, newExt string) string {
	logExt := path.Ext(fileName)
	return fileName[0:len(fileName)-len(logExt)] + newExt
}

// WriteFileAtomic implements spec.md §4.2/§6's atomic-write requirement (P4):
// readers must never observe a partially written .info/.json file. It writes to
// a sibling "<path>.<random number>" file (see OpenTempFile) and renames over
// the destination, same as the
// teacher's OpenTempFile half-does and original_source/buildtool.py's atomic_write.
func WriteFileAtomic(fullPath string, data []byte) error {
	if err := MkdirForFile(fullPath); err != nil {
		return err
	}

	tmp, err := OpenTempFile(fullPath)
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	return os.Rename(tmpName, fullPath)
}
