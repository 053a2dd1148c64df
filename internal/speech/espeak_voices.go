package speech

import "strings"

// espeakWordsPerMinute is espeak's speed at rate 1.
const espeakWordsPerMinute = 175

func espeakSpeed(rate float64) int {
	if rate <= 0 {
		rate = 1
	}
	return clamp(int(espeakWordsPerMinute*rate), 80, 450)
}

// parseEspeakVoices reads the table printed by `espeak-ng --voices`:
//
//	Pty Language       Age/Gender VoiceName          File                 Other Languages
//	 5  en-gb           --/M      English_(Great_Britain) gmw/en
func parseEspeakVoices(out string) []Voice {
	var voices []Voice
	for i, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if i == 0 || len(fields) < 5 {
			continue
		}
		voices = append(voices, Voice{
			Name: strings.ReplaceAll(fields[3], "_", " "),
			URI:  fields[4],
			Lang: fields[1],
		})
	}
	if len(voices) > 0 {
		voices[0].Default = true
	}
	return voices
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
