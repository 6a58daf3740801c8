package ffmpeg

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

type ZipCreator struct{}

func NewZipCreator() *ZipCreator {
	return &ZipCreator{}
}

// CreateZip writes the listed files into an archive and returns its size.
func (z *ZipCreator) CreateZip(ctx context.Context, filePaths []string, outputPath string) (int64, error) {
	zipFile, err := os.Create(outputPath)
	if err != nil {
		return 0, fmt.Errorf("create zip file: %w", err)
	}
	defer zipFile.Close()

	zipWriter := zip.NewWriter(zipFile)

	for _, fp := range filePaths {
		select {
		case <-ctx.Done():
			zipWriter.Close()
			return 0, ctx.Err()
		default:
		}

		if err := addFileToZip(zipWriter, fp); err != nil {
			zipWriter.Close()
			return 0, fmt.Errorf("add %s to zip: %w", fp, err)
		}
	}

	if err := zipWriter.Close(); err != nil {
		return 0, fmt.Errorf("finalize zip: %w", err)
	}

	info, err := zipFile.Stat()
	if err != nil {
		return 0, fmt.Errorf("stat zip: %w", err)
	}
	return info.Size(), nil
}

func addFileToZip(zw *zip.Writer, filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}

	header.Name = filepath.Base(filename)
	header.Method = zip.Deflate

	writer, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}

	_, err = io.Copy(writer, file)
	return err
}
