package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// ErrCorrupted indica que el archivo de la tabla existe pero no es JSON valido.
var ErrCorrupted = errors.New("store: corrupted table file")

// Table persiste un mapeo completo clave->registro en un unico archivo JSON.
// Toda mutacion pasa por un mutex por tabla: un solo escritor por archivo.
type Table[V any] struct {
	mu      sync.Mutex
	path    string
	lenient bool
}

// NewTable crea una tabla estricta: contenido corrupto aborta las mutaciones
// y se reporta al llamador.
func NewTable[V any](path string) *Table[V] {
	return &Table[V]{path: path}
}

// NewLenientTable crea una tabla con semantica de cache: contenido corrupto
// se trata como un mapeo vacio.
func NewLenientTable[V any](path string) *Table[V] {
	return &Table[V]{path: path, lenient: true}
}

// Load lee el archivo completo. Un archivo ausente es un mapeo vacio.
func (t *Table[V]) Load() (map[string]V, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.loadLocked()
}

// Save serializa el mapeo completo y reemplaza el archivo via rename.
func (t *Table[V]) Save(m map[string]V) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.saveLocked(m)
}

// Update ejecuta una secuencia leer-modificar-guardar bajo el lock de la
// tabla. Si fn devuelve error no se escribe nada.
func (t *Table[V]) Update(fn func(map[string]V) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	m, err := t.loadLocked()
	if err != nil {
		return err
	}
	if err := fn(m); err != nil {
		return err
	}
	return t.saveLocked(m)
}

func (t *Table[V]) loadLocked() (map[string]V, error) {
	data, err := os.ReadFile(t.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return make(map[string]V), nil
		}
		return make(map[string]V), fmt.Errorf("store: read %s: %w", t.path, err)
	}

	m := make(map[string]V)
	if err := json.Unmarshal(data, &m); err != nil {
		if t.lenient {
			return make(map[string]V), nil
		}
		return make(map[string]V), fmt.Errorf("%w: %s", ErrCorrupted, t.path)
	}
	return m, nil
}

func (t *Table[V]) saveLocked(m map[string]V) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", t.path, err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(t.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(t.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("store: temp file for %s: %w", t.path, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("store: write %s: %w", t.path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("store: close %s: %w", t.path, err)
	}
	if err := os.Rename(tmpName, t.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("store: rename %s: %w", t.path, err)
	}
	return nil
}
