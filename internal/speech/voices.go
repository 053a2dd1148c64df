package speech

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"golang.org/x/text/language"
)

const DefaultVoicePollInterval = 10 * time.Millisecond

// WaitForVoices polls the engine until it lists at least one voice or the
// timeout passes. Some engines populate their voice list lazily.
func WaitForVoices(ctx context.Context, s Synthesizer, interval, timeout time.Duration) ([]Voice, error) {
	if interval <= 0 {
		interval = DefaultVoicePollInterval
	}
	var voices []Voice
	backoff := retry.WithMaxDuration(timeout, retry.NewConstant(interval))
	err := retry.Do(ctx, backoff, func(_ context.Context) error {
		voices = s.Voices()
		if len(voices) == 0 {
			return retry.RetryableError(ErrNoVoices)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("wait for voices: %w", err)
	}
	return voices, nil
}

// MatchLanguage reports whether a voice language satisfies the wanted one.
// "en" matches every English voice; "en-GB" only British ones.
func MatchLanguage(voiceLang, want string) bool {
	if want == "" {
		return true
	}
	vt, verr := language.Parse(strings.ReplaceAll(voiceLang, "_", "-"))
	wt, werr := language.Parse(strings.ReplaceAll(want, "_", "-"))
	if verr != nil || werr != nil {
		return strings.HasPrefix(strings.ToLower(voiceLang), strings.ToLower(want))
	}
	vb, _, vr := vt.Raw()
	wb, _, wr := wt.Raw()
	if vb != wb {
		return false
	}
	var anyRegion language.Region
	return wr == anyRegion || wr == vr
}

// FilterByLanguage keeps the voices matching lang, in engine order.
func FilterByLanguage(voices []Voice, lang string) []Voice {
	var out []Voice
	for _, v := range voices {
		if MatchLanguage(v.Lang, lang) {
			out = append(out, v)
		}
	}
	return out
}

// ResolveVoice picks the voice with the given URI, falling back to the first
// available voice. It returns nil for an empty list.
func ResolveVoice(voices []Voice, uri string) *Voice {
	if len(voices) == 0 {
		return nil
	}
	v := voices[0]
	if i := slices.IndexFunc(voices, func(v Voice) bool { return uri != "" && v.URI == uri }); i >= 0 {
		v = voices[i]
	}
	return &v
}

var vendorNoise = regexp.MustCompile(`(Microsoft\s)|(Online\s)|(\(Natural\))|(\s-.*$)`)

// DisplayName strips vendor decoration from a voice name.
func DisplayName(v Voice) string {
	return strings.TrimSpace(vendorNoise.ReplaceAllString(v.Name, ""))
}
