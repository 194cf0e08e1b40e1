// Package blobstore implementa offline.BlobStore sobre disco local o Redis.
package blobstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileStore guarda cada clave como un archivo JSON dentro de dir.
// La escritura es atómica: archivo temporal en el mismo directorio y rename.
type FileStore struct {
	dir string
}

// NewFileStore crea dir si no existe.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("blobstore: crear directorio %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

// path convierte la clave en un nombre de archivo seguro ("pos:offline-sales" -> "pos_offline-sales.json").
func (s *FileStore) path(key string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		}
		return '_'
	}, key)
	return filepath.Join(s.dir, name+".json")
}

// Get devuelve nil si el archivo no existe.
func (s *FileStore) Get(_ context.Context, key string) ([]byte, error) {
	b, err := os.ReadFile(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("blobstore: leer %s: %w", key, err)
	}
	return b, nil
}

// Set reemplaza el contenido de la clave.
func (s *FileStore) Set(_ context.Context, key string, value []byte) error {
	target := s.path(key)
	tmp, err := os.CreateTemp(s.dir, filepath.Base(target)+".*.tmp")
	if err != nil {
		return fmt.Errorf("blobstore: archivo temporal: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		return fmt.Errorf("blobstore: escribir %s: %w", key, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("blobstore: sync %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("blobstore: cerrar %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("blobstore: reemplazar %s: %w", key, err)
	}
	return nil
}
