package upload

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
)

// FromFile describes a file on disk as a candidate. The media type comes from
// the extension, or from content sniffing when the extension is unknown.
func FromFile(path string) (Candidate, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Candidate{}, err
	}
	if info.IsDir() {
		return Candidate{}, fmt.Errorf("%s is a directory", path)
	}

	mediaType := mime.TypeByExtension(filepath.Ext(path))
	if mediaType == "" {
		mediaType, err = sniff(path)
		if err != nil {
			return Candidate{}, err
		}
	}

	return Candidate{
		Name:     filepath.Base(path),
		Size:     info.Size(),
		MIMEType: mediaType,
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}, nil
}

func sniff(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	header := make([]byte, 512)
	n, err := f.Read(header)
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("inspect %s: %w", path, err)
	}
	return http.DetectContentType(header[:n]), nil
}
