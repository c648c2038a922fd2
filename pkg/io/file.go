package io

import (
	"io"
	"os"

	errs "github.com/matzehuels/regroup/pkg/errors"
)

func importFile(path string, read func(io.Reader) error) error {
	if err := errs.ValidatePath(path); err != nil {
		return err
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return errs.Wrap(errs.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return errs.Wrap(errs.ErrCodeInvalidPath, err, "open %s", path)
	}
	defer f.Close()
	return read(f)
}

func exportFile(path string, write func(io.Writer) error) error {
	if err := errs.ValidatePath(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return errs.Wrap(errs.ErrCodeInvalidPath, err, "create %s", path)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
