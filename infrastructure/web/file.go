package web

import (
	"fmt"
	"net/http"
	"os"
)

// FileServer serves files from a directory on disk under path. Directory
// listings are not served.
func (wh *WebHandler) FileServer(dir string, path string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("stat static dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("static dir %s is not a directory", dir)
	}

	fileServer := http.StripPrefix(path, http.FileServer(noListingFS{http.Dir(dir)}))
	wh.mux.Handle(fmt.Sprintf("GET %s", path), fileServer)

	return nil
}

type noListingFS struct {
	fs http.FileSystem
}

func (n noListingFS) Open(name string) (http.File, error) {
	f, err := n.fs.Open(name)
	if err != nil {
		return nil, err
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if stat.IsDir() {
		f.Close()
		return nil, os.ErrNotExist
	}

	return f, nil
}
