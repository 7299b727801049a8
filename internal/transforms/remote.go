package transforms

import (
	"fmt"
	"net/http"

	"github.com/pixelform/pixelform/pkg/pixel"
)

// NewRemoteImage loads an image over HTTP and returns its pixel
// buffer and source format.
func NewRemoteImage(src string, client *http.Client) (*pixel.Buffer, string, error) {
	if client == nil {
		client = http.DefaultClient
	}

	if src == "" {
		return nil, "", fmt.Errorf("No image URL")
	}

	rsp, err := client.Get(src)
	if err != nil {
		return nil, "", err
	}
	defer rsp.Body.Close()

	if rsp.StatusCode/100 != 2 {
		return nil, "", fmt.Errorf("Invalid response status (%d)", rsp.StatusCode)
	}

	return pixel.Decode(rsp.Body)
}
