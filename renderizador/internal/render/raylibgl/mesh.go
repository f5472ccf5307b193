package raylibgl

/*
#include <stdlib.h>
*/
import "C"

import (
	"unsafe"

	"SchematicVision/renderizador/internal/render"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// geometryToMesh copia os buffers para memória C; o raylib libera essa memória em UnloadModel.
func geometryToMesh(data render.GeometryData) rl.Mesh {
	var mesh rl.Mesh
	vCount := int32(data.VertexCount())
	mesh.VertexCount = vCount
	mesh.TriangleCount = vCount / 3

	if len(data.Vertices) > 0 {
		mesh.Vertices = (*float32)(copyToC(unsafe.Pointer(&data.Vertices[0]), len(data.Vertices)*4))
	}
	if len(data.Normals) > 0 {
		mesh.Normals = (*float32)(copyToC(unsafe.Pointer(&data.Normals[0]), len(data.Normals)*4))
	}
	if len(data.Colors) > 0 {
		mesh.Colors = (*uint8)(copyToC(unsafe.Pointer(&data.Colors[0]), len(data.Colors)))
	}
	if len(data.UVs) > 0 {
		mesh.Texcoords = (*float32)(copyToC(unsafe.Pointer(&data.UVs[0]), len(data.UVs)*4))
	}
	if len(data.Repeats) > 0 {
		mesh.Texcoords2 = (*float32)(copyToC(unsafe.Pointer(&data.Repeats[0]), len(data.Repeats)*4))
	}
	return mesh
}

func copyToC(data unsafe.Pointer, size int) unsafe.Pointer {
	if size <= 0 || data == nil {
		return nil
	}
	ptr := C.malloc(C.size_t(size))
	if ptr == nil {
		return nil
	}
	cSlice := unsafe.Slice((*byte)(ptr), size)
	goSlice := unsafe.Slice((*byte)(data), size)
	copy(cSlice, goSlice)
	return ptr
}
