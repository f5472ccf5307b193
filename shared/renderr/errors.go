// Package renderr define o erro tipado devolvido por um job de renderização.
package renderr

import (
	"errors"
	"fmt"
)

// Kind classifica a etapa do job que falhou.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindModelBuild
	KindMeshConstruction
	KindFrameRender
	KindExport
	KindStillRender
	KindInvalidArgument
)

// Code retorna o código numérico estável da categoria.
func (k Kind) Code() int {
	switch k {
	case KindModelBuild:
		return 2001
	case KindMeshConstruction:
		return 2002
	case KindFrameRender:
		return 2003
	case KindExport:
		return 2004
	case KindStillRender:
		return 2005
	case KindInvalidArgument:
		return 6002
	}
	return 2000
}

func (k Kind) String() string {
	switch k {
	case KindModelBuild:
		return "model_build"
	case KindMeshConstruction:
		return "mesh_construction"
	case KindFrameRender:
		return "frame_render"
	case KindExport:
		return "export"
	case KindStillRender:
		return "still_render"
	case KindInvalidArgument:
		return "invalid_argument"
	}
	return "unknown"
}

// Error é a falha de um job, com código numérico para a camada de apresentação.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Kind.Code(), e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Kind.Code(), e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Code retorna o código numérico do erro.
func (e *Error) Code() int { return e.Kind.Code() }

// New cria um erro sem causa.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap embrulha err numa categoria. Se err já for um *Error, ele é devolvido intacto
// para que a categoria da etapa original não se perca.
func Wrap(kind Kind, err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	var re *Error
	if errors.As(err, &re) {
		return err
	}
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extrai a categoria de err, ou KindUnknown.
func KindOf(err error) Kind {
	var re *Error
	if errors.As(err, &re) {
		return re.Kind
	}
	return KindUnknown
}

// CodeOf extrai o código numérico de err; 0 para nil.
func CodeOf(err error) int {
	if err == nil {
		return 0
	}
	return KindOf(err).Code()
}
