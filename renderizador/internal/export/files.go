package export

import (
	"bufio"
	"fmt"
	"image"
	"image/png"
	"io"
	"log"
	"os"
	"path/filepath"

	"SchematicVision/shared/renderr"

	"github.com/dustin/go-humanize"
)

// tempPath reserva um arquivo temporário no mesmo diretório do destino,
// para que o rename final seja atômico.
func tempPath(outPath string) (string, error) {
	f, err := os.CreateTemp(filepath.Dir(outPath), "."+filepath.Base(outPath)+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("criando temporário: %w", err)
	}
	name := f.Name()
	if err := f.Close(); err != nil {
		os.Remove(name)
		return "", err
	}
	return name, nil
}

// writeFile grava em path com buffer, fechando o arquivo em qualquer caso.
func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(f)
	if err := write(bw); err != nil {
		f.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// commit move o temporário para o destino e retorna o tamanho final.
func commit(tmp, outPath string) (int64, error) {
	info, err := os.Stat(tmp)
	if err != nil {
		return 0, err
	}
	if info.Size() == 0 {
		return 0, fmt.Errorf("arquivo gerado vazio")
	}
	if err := os.Rename(tmp, outPath); err != nil {
		return 0, fmt.Errorf("renomeando para %s: %w", filepath.Base(outPath), err)
	}
	return info.Size(), nil
}

// WritePNG grava um still com a mesma disciplina de temporário + rename.
func WritePNG(img image.Image, outPath string) (res Result, err error) {
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return Result{}, renderr.Wrap(renderr.KindExport, err, "criando diretório de saída")
	}
	tmp, err := tempPath(outPath)
	if err != nil {
		return Result{}, renderr.Wrap(renderr.KindExport, err, "salvando PNG")
	}
	defer func() {
		if err != nil {
			os.Remove(tmp)
		}
	}()

	if err := writeFile(tmp, func(w io.Writer) error { return png.Encode(w, img) }); err != nil {
		return Result{}, renderr.Wrap(renderr.KindExport, err, "codificando PNG")
	}
	size, err := commit(tmp, outPath)
	if err != nil {
		return Result{}, renderr.Wrap(renderr.KindExport, err, "salvando PNG")
	}

	b := img.Bounds()
	log.Printf("[Export] %s: still %dx%d, %s", filepath.Base(outPath), b.Dx(), b.Dy(), humanize.Bytes(uint64(size)))
	return Result{Path: outPath, Bytes: size, Frames: 1, Width: b.Dx(), Height: b.Dy(), Encoder: "image/png"}, nil
}
