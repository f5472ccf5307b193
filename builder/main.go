package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// Cores para o terminal (ANSI)
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorCyan   = "\033[36m"
)

// target descreve um binário a compilar.
type target struct {
	Name    string
	Dir     string
	Output  string
	Cgo     bool
	LDFlags string
}

// renderTarget monta o alvo do renderizador para o sistema dado.
// O backend usa raylib via cgo; no Windows o link é estático para não depender de DLLs do MSYS2.
func renderTarget(goos, outDir string) target {
	t := target{
		Name:    "RENDERIZADOR (CGO)",
		Dir:     "renderizador",
		Output:  filepath.Join(outDir, "schematicvision"),
		Cgo:     true,
		LDFlags: "-s -w",
	}
	if goos == "windows" {
		t.Output += ".exe"
		t.LDFlags = "-extldflags=-static -s -w"
	}
	return t
}

// buildArgs retorna os argumentos do go build para o alvo.
func buildArgs(t target, tags string) []string {
	args := []string{"build", "-trimpath", "-ldflags", t.LDFlags}
	if tags != "" {
		args = append(args, "-tags", tags)
	}
	return append(args, "-o", t.Output, "./"+t.Dir)
}

func main() {
	outDir := flag.String("out", "dist", "Diretório de saída")
	tags := flag.String("tags", "", "Build tags extras (ex: opengl43)")
	flag.Parse()

	fmt.Println(ColorCyan + "SchematicVision Builder" + ColorReset)
	start := time.Now()

	setupEnvironment()

	t := renderTarget(runtime.GOOS, *outDir)
	if err := buildComponent(t, *tags); err != nil {
		fmt.Printf(ColorRed+"[ERRO FATAL] %v"+ColorReset+"\n", err)
		os.Exit(1)
	}

	fmt.Printf(ColorCyan+"Build finalizada em %v"+ColorReset+"\n", time.Since(start).Round(time.Second))
	fmt.Println(ColorYellow + "Dica: copie o resource pack para o diretório indicado em resource_dir." + ColorReset)
}

func setupEnvironment() {
	fmt.Println(ColorYellow + "[0/1] Configurando ambiente de compilação..." + ColorReset)

	// Adicionar MSYS2 ao PATH se estiver no Windows
	if runtime.GOOS == "windows" {
		msysPath := `C:\msys64\mingw64\bin`
		currentPath := os.Getenv("PATH")
		if !strings.Contains(currentPath, msysPath) {
			os.Setenv("PATH", msysPath+";"+currentPath)
			fmt.Printf("  - PATH atualizado: %s adicionado.\n", msysPath)
		}
		os.Setenv("CC", "gcc")
	}
}

func buildComponent(t target, tags string) error {
	fmt.Printf(ColorYellow+"[1/1] Compilando %s..."+ColorReset+"\n", t.Name)

	if err := os.MkdirAll(filepath.Dir(t.Output), 0755); err != nil {
		return err
	}

	cmd := exec.Command("go", buildArgs(t, tags)...)
	cmd.Env = append(os.Environ(), "CGO_ENABLED="+cgoValue(t.Cgo))
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("falha ao compilar %s: %w", t.Name, err)
	}

	fmt.Printf(ColorGreen+"  - %s -> %s"+ColorReset+"\n", t.Name, t.Output)
	return nil
}

func cgoValue(on bool) string {
	if on {
		return "1"
	}
	return "0"
}
