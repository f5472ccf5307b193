package raylibgl

// Shader de terreno com repetição de textura: os UVs chegam em [0,1] e a
// repetição de cada quad vem em vertexTexCoord2.
const surfaceVertexShader = `
#version 330
in vec3 vertexPosition;
in vec2 vertexTexCoord;
in vec2 vertexTexCoord2;
in vec4 vertexColor;

uniform mat4 mvp;

out vec2 fragTexCoord;
out vec2 fragRepeat;
out vec4 fragColor;

void main() {
    fragTexCoord = vertexTexCoord;
    fragRepeat = vertexTexCoord2;
    fragColor = vertexColor;
    gl_Position = mvp * vec4(vertexPosition, 1.0);
}
`

const surfaceFragmentShader = `
#version 330
in vec2 fragTexCoord;
in vec2 fragRepeat;
in vec4 fragColor;

uniform sampler2D texture0;
uniform vec4 colDiffuse;

out vec4 finalColor;

void main() {
    // fract() com a borda final preservada, para não amostrar o texel 0 no limite do quad
    vec2 t = fragTexCoord * fragRepeat;
    vec2 uv = t - min(floor(t), max(fragRepeat - 1.0, 0.0));

    vec4 texelColor = texture(texture0, uv);
    if (texelColor.a < 0.1) discard;

    finalColor = texelColor * fragColor * colDiffuse;
}
`
