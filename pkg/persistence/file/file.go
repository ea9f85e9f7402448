// Package file provides filesystem-backed sequence persistence: one JSON
// document per sequence under the configured root.
package file

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path"

	"github.com/sequor-io/sequor/pkg/codec"
	"github.com/sequor-io/sequor/pkg/models"
	"github.com/sequor-io/sequor/pkg/persistence"
)

type FilePersistence struct {
	root string
}

func NewFilePersistence(root string) *FilePersistence {
	return &FilePersistence{
		root: root,
	}
}

func (fp *FilePersistence) sequencesDir() string {
	return path.Join(fp.root, "sequences")
}

func (fp *FilePersistence) Sequences(ctx context.Context) ([]*models.Sequence, error) {
	root := os.DirFS(fp.sequencesDir())

	jsonFiles, err := fs.Glob(root, "*.json")
	if err != nil {
		return nil, err
	}

	sequences := make([]*models.Sequence, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		sequence, err := fp.SequenceByID(ctx, file[:len(file)-5])
		if err != nil {
			return nil, err
		}

		sequences = append(sequences, sequence)
	}

	return sequences, nil
}

func (fp *FilePersistence) SequenceByID(ctx context.Context, id string) (*models.Sequence, error) {
	body, err := os.ReadFile(path.Join(fp.sequencesDir(), id+".json"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, persistence.NewSequenceError("SequenceByID", id, persistence.ErrSequenceNotFound)
		}

		return nil, err
	}

	sequence, err := codec.Unmarshal(body)
	if err != nil {
		return nil, persistence.NewSequenceError("SequenceByID", id, err)
	}

	return sequence, nil
}

func (fp *FilePersistence) SaveSequence(ctx context.Context, sequence *models.Sequence) error {
	body, err := codec.Marshal(sequence)
	if err != nil {
		return persistence.NewSequenceError("SaveSequence", sequence.ID, err)
	}

	if err := os.MkdirAll(fp.sequencesDir(), 0o755); err != nil {
		return err
	}

	return os.WriteFile(path.Join(fp.sequencesDir(), sequence.ID+".json"), body, 0o644)
}

func (fp *FilePersistence) DeleteSequence(ctx context.Context, id string) error {
	err := os.Remove(path.Join(fp.sequencesDir(), id+".json"))
	if errors.Is(err, fs.ErrNotExist) {
		return persistence.NewSequenceError("DeleteSequence", id, persistence.ErrSequenceNotFound)
	}

	return err
}

func (fp *FilePersistence) HealthCheck(ctx context.Context) error {
	_, err := os.Stat(fp.root)

	return err
}

func (fp *FilePersistence) Close(ctx context.Context) error {
	return nil
}
