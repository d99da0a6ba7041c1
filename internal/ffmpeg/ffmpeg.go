// Package ffmpeg shells out to ffmpeg/ffprobe for the small amount of media
// glue the aligner needs: probing the recording duration and pulling the
// audio track out of a video container before upload.
package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// Info describes the audio stream of an input file.
type Info struct {
	Duration   float64 // seconds, 0 when ffprobe cannot tell
	AudioCodec string
}

var videoExts = map[string]bool{
	".mp4":  true,
	".mkv":  true,
	".mov":  true,
	".avi":  true,
	".flv":  true,
	".webm": true,
}

// IsVideo reports whether the path looks like a video container that needs
// its audio extracted before upload.
func IsVideo(path string) bool {
	return videoExts[strings.ToLower(filepath.Ext(path))]
}

// Available reports whether both ffmpeg and ffprobe are on the PATH.
func Available() bool {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return false
	}
	_, err := exec.LookPath("ffprobe")
	return err == nil
}

// Probe asks ffprobe for the duration and audio codec of a media file.
func Probe(ctx context.Context, path string) (Info, error) {
	args := []string{
		"-v", "error",
		"-select_streams", "a:0",
		"-show_entries", "stream=codec_name:format=duration",
		"-of", "json",
		path,
	}
	out, err := exec.CommandContext(ctx, "ffprobe", args...).Output()
	if err != nil {
		return Info{}, fmt.Errorf("ffprobe %s: %w", filepath.Base(path), err)
	}

	var probe struct {
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
		Streams []struct {
			CodecName string `json:"codec_name"`
		} `json:"streams"`
	}
	if err := json.Unmarshal(out, &probe); err != nil {
		return Info{}, fmt.Errorf("parse ffprobe output: %w", err)
	}

	info := Info{AudioCodec: "unknown"}
	info.Duration, _ = strconv.ParseFloat(probe.Format.Duration, 64)
	if len(probe.Streams) > 0 && probe.Streams[0].CodecName != "" {
		info.AudioCodec = probe.Streams[0].CodecName
	}
	return info, nil
}

// ExtractAudio copies the audio stream of src into dst without re-encoding.
func ExtractAudio(ctx context.Context, src, dst string) error {
	args := []string{"-i", src, "-vn", "-c:a", "copy", "-y", dst}
	out, err := exec.CommandContext(ctx, "ffmpeg", args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg -vn %s: %w: %s", filepath.Base(src), err, lastLine(out))
	}
	return nil
}

// lastLine trims ffmpeg's chatty stderr down to its final line, which is
// where it reports the actual failure.
func lastLine(out []byte) string {
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if len(lines) == 0 {
		return ""
	}
	return strings.TrimSpace(lines[len(lines)-1])
}
