package inventree

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"
	"strconv"

	"github.com/partforge/partsync/pkg/errors"
)

// uploadAttachment downloads a document and posts it as a file attachment
// on a part.
func (c *Client) uploadAttachment(ctx context.Context, partID int, fileURL, comment string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(resp.Body)
		return errors.NewAPIError("download", fileURL, resp.StatusCode, payload)
	}

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	if err := form.WriteField("model_type", "part"); err != nil {
		return err
	}
	if err := form.WriteField("model_id", strconv.Itoa(partID)); err != nil {
		return err
	}
	if err := form.WriteField("comment", comment); err != nil {
		return err
	}
	file, err := form.CreateFormFile("attachment", attachmentFilename(fileURL))
	if err != nil {
		return err
	}
	if _, err := io.Copy(file, resp.Body); err != nil {
		return err
	}
	if err := form.Close(); err != nil {
		return err
	}

	post, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+apiAttachment, &buf)
	if err != nil {
		return err
	}
	post.Header.Set("Authorization", "Token "+c.token)
	post.Header.Set("Content-Type", form.FormDataContentType())

	uploadResp, err := c.http.Do(post)
	if err != nil {
		return err
	}
	defer uploadResp.Body.Close() //nolint:errcheck

	if uploadResp.StatusCode < 200 || uploadResp.StatusCode >= 300 {
		payload, _ := io.ReadAll(uploadResp.Body)
		return errors.NewAPIError(serviceName, apiAttachment, uploadResp.StatusCode, payload)
	}
	return nil
}

func attachmentFilename(fileURL string) string {
	parsed, err := url.Parse(fileURL)
	if err != nil || path.Base(parsed.Path) == "." || path.Base(parsed.Path) == "/" {
		return "datasheet.pdf"
	}
	return path.Base(parsed.Path)
}
