package inference

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	ort "github.com/yalue/onnxruntime_go"
)

// InitEnvironment loads the ONNX Runtime shared library. It must be called
// once before any session is created.
func InitEnvironment(libPath string) error {
	if libPath != "" {
		ort.SetSharedLibraryPath(libPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("initialize onnxruntime: %w", err)
	}
	return nil
}

// DestroyEnvironment releases the ONNX Runtime environment.
func DestroyEnvironment() error {
	return ort.DestroyEnvironment()
}

// ResolveModel maps a network name to a model file. Names ending in .onnx
// are used as paths; anything else is looked up as <dir>/<network>.onnx.
func ResolveModel(network, dir string) (string, error) {
	path := network
	if !strings.HasSuffix(strings.ToLower(network), ".onnx") {
		path = filepath.Join(dir, network+".onnx")
	}
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("model %q: %w", network, err)
	}
	return path, nil
}

// modelSession bundles a session with its preallocated tensors.
type modelSession struct {
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
}

func newModelSession(modelPath string) (*modelSession, error) {
	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("error creating session options: %w", err)
	}
	defer options.Destroy()

	options.SetIntraOpNumThreads(runtime.NumCPU())
	options.SetInterOpNumThreads(1)

	inputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 3, InputHeight, InputWidth))
	if err != nil {
		return nil, fmt.Errorf("error creating input tensor: %w", err)
	}

	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, NumChannels, NumAnchors))
	if err != nil {
		inputTensor.Destroy()
		return nil, fmt.Errorf("error creating output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(
		modelPath,
		[]string{inputName},
		[]string{outputName},
		[]ort.ArbitraryTensor{inputTensor},
		[]ort.ArbitraryTensor{outputTensor},
		options,
	)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("error creating session: %w", err)
	}

	return &modelSession{session: session, input: inputTensor, output: outputTensor}, nil
}

func (m *modelSession) destroy() {
	if m.session != nil {
		m.session.Destroy()
	}
	if m.input != nil {
		m.input.Destroy()
	}
	if m.output != nil {
		m.output.Destroy()
	}
}
