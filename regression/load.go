package regression

import (
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
)

type initializer interface {
	Init() error
}

func decode(r io.Reader, dst initializer) error {
	if err := json.NewDecoder(r).Decode(dst); err != nil {
		return err
	}
	return dst.Init()
}

func decodeFile(path string, dst initializer) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := decode(f, dst); err != nil {
		return fmt.Errorf("unable to load %s, %w", path, err)
	}
	return nil
}

func ReadPolynomialFeatures(r io.Reader) (*PolynomialFeatures, error) {
	var p PolynomialFeatures
	if err := decode(r, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func ReadStandardScaler(r io.Reader) (*StandardScaler, error) {
	var s StandardScaler
	if err := decode(r, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func ReadGaussianProcess(r io.Reader) (*GaussianProcess, error) {
	var gp GaussianProcess
	if err := decode(r, &gp); err != nil {
		return nil, err
	}
	return &gp, nil
}

// LoadPipeline reads the three artifacts from json files and chains them
func LoadPipeline(polyPath, scalerPath, regressorPath string) (*Pipeline, error) {
	var (
		poly      PolynomialFeatures
		scaler    StandardScaler
		regressor GaussianProcess
	)
	if err := decodeFile(polyPath, &poly); err != nil {
		return nil, err
	}
	if err := decodeFile(scalerPath, &scaler); err != nil {
		return nil, err
	}
	if err := decodeFile(regressorPath, &regressor); err != nil {
		return nil, err
	}
	return NewPipeline(&poly, &scaler, &regressor)
}
