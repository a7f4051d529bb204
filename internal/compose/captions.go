package compose

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"factreel/internal/types"
)

type CaptionStyle struct {
	Font           string
	FontSize       int
	TextColor      string
	OutlineColor   string
	OutlineWidth   int
	Highlight      bool
	HighlightColor string
}

// Caption is one subtitle event. Header captions are centred on screen, the
// rest sit in the bottom third.
type Caption struct {
	Text   string
	Start  float64
	End    float64
	Header bool
}

var namedColors = map[string]string{
	"white":  "FFFFFF",
	"black":  "000000",
	"red":    "FF0000",
	"green":  "00FF00",
	"blue":   "0000FF",
	"yellow": "FFFF00",
	"gold":   "FFD700",
	"orange": "FFA500",
	"gray":   "808080",
	"grey":   "808080",
}

// hexColor normalizes "#RRGGBB", "0xRRGGBB" or a basic colour name to
// RRGGBB. Unknown values fall back to fallback.
func hexColor(c, fallback string) string {
	c = strings.ToLower(strings.TrimSpace(c))
	if v, ok := namedColors[c]; ok {
		return v
	}
	c = strings.TrimPrefix(strings.TrimPrefix(c, "#"), "0x")
	if len(c) != 6 {
		return fallback
	}
	for _, r := range c {
		if !strings.ContainsRune("0123456789abcdef", r) {
			return fallback
		}
	}
	return strings.ToUpper(c)
}

// assColor converts a colour to ASS &HAABBGGRR notation.
func assColor(c, fallback string) string {
	h := hexColor(c, fallback)
	return "&H00" + h[4:6] + h[2:4] + h[0:2]
}

// formatTimestamp renders seconds as H:MM:SS.cc.
func formatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	cs := int(seconds*100 + 0.5)
	return fmt.Sprintf("%d:%02d:%02d.%02d", cs/360000, cs/6000%60, cs/100%60, cs%100)
}

var assEscaper = strings.NewReplacer("{", "(", "}", ")", "\\", "/", "\r\n", "\\N", "\n", "\\N")

// highlightWords recolours roughly one in four eligible words, chosen by rng.
// Words of three letters or fewer are never highlighted.
func highlightWords(text, color string, rng *rand.Rand) string {
	words := strings.Fields(text)
	var eligible []int
	for i, w := range words {
		if len([]rune(strings.Trim(w, ".,!?;:\"'()"))) > 3 {
			eligible = append(eligible, i)
		}
	}
	if len(eligible) == 0 {
		return text
	}
	n := len(eligible)/4 + 1
	tag := fmt.Sprintf("{\\c%s}", color)
	for _, k := range rng.Perm(len(eligible))[:n] {
		i := eligible[k]
		words[i] = tag + words[i] + "{\\r}"
	}
	return strings.Join(words, " ")
}

// WriteASS writes an ASS script for captions at the given frame size.
func WriteASS(w io.Writer, captions []Caption, style CaptionStyle, width, height int, rng *rand.Rand) error {
	primary := assColor(style.TextColor, "FFFFFF")
	outline := assColor(style.OutlineColor, "000000")
	highlight := assColor(style.HighlightColor, "FFD700")
	margin := width / 10

	var b strings.Builder
	b.WriteString("[Script Info]\nScriptType: v4.00+\nWrapStyle: 0\nScaledBorderAndShadow: yes\n")
	fmt.Fprintf(&b, "PlayResX: %d\nPlayResY: %d\n\n", width, height)
	b.WriteString("[V4+ Styles]\n")
	b.WriteString("Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding\n")
	fmt.Fprintf(&b, "Style: Caption,%s,%d,%s,%s,%s,&H80000000,-1,0,0,0,100,100,0,0,1,%d,0,8,%d,%d,%d,1\n",
		style.Font, style.FontSize, primary, primary, outline, style.OutlineWidth, margin, margin, height*7/10)
	fmt.Fprintf(&b, "Style: Header,%s,%d,%s,%s,%s,&H80000000,-1,0,0,0,100,100,0,0,1,%d,0,5,%d,%d,0,1\n\n",
		style.Font, style.FontSize, primary, primary, outline, style.OutlineWidth, margin, margin)
	b.WriteString("[Events]\nFormat: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")

	for _, c := range captions {
		text := assEscaper.Replace(strings.TrimSpace(c.Text))
		if style.Highlight && rng != nil {
			text = highlightWords(text, highlight, rng)
		}
		name := "Caption"
		if c.Header {
			name = "Header"
		}
		fmt.Fprintf(&b, "Dialogue: 0,%s,%s,%s,,0,0,0,,%s\n", formatTimestamp(c.Start), formatTimestamp(c.End), name, text)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteASSFile writes captions to path, creating its directory.
func WriteASSFile(path string, captions []Caption, style CaptionStyle, width, height int, rng *rand.Rand) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteASS(f, captions, style, width, height, rng); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// CaptionsFor lays captions over a timeline. In single-block mode the header
// line goes above the whole fact, held for duration seconds.
func CaptionsFor(segments []types.TimingSegment, single bool, header string, duration float64) []Caption {
	if single && len(segments) > 0 {
		text := segments[0].Text
		if header != "" {
			text = header + "\n" + text
		}
		end := segments[0].End
		if duration > end {
			end = duration
		}
		return []Caption{{Text: text, Start: 0, End: end, Header: true}}
	}
	captions := make([]Caption, len(segments))
	for i, s := range segments {
		captions[i] = Caption{Text: s.Text, Start: s.Start, End: s.End}
	}
	return captions
}
