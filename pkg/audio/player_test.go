package audio

import "testing"

func TestConvertPCM16RoundTrip(t *testing.T) {
	samples := []int16{0, 100, -100, 32767, -32768}

	data := ConvertInt16ToPCM16(samples)
	if len(data) != len(samples)*2 {
		t.Fatalf("expected %d bytes, got %d", len(samples)*2, len(data))
	}

	back := ConvertPCM16ToInt16(data)
	if len(back) != len(samples) {
		t.Fatalf("expected %d samples, got %d", len(samples), len(back))
	}
	for i, s := range samples {
		if back[i] != s {
			t.Errorf("sample %d: expected %d, got %d", i, s, back[i])
		}
	}
}

func TestResampleSameRate(t *testing.T) {
	samples := []int16{1, 2, 3, 4}
	result := Resample(samples, 24000, 24000)
	if len(result) != 4 {
		t.Fatalf("expected same length, got %d", len(result))
	}
}

func TestResampleUpsamples(t *testing.T) {
	samples := make([]int16, 240) // 10ms at 24kHz
	result := Resample(samples, 24000, 48000)
	if len(result) != 480 {
		t.Errorf("expected 480 samples, got %d", len(result))
	}
}

func TestResampleDownsamples(t *testing.T) {
	samples := make([]int16, 480)
	result := Resample(samples, 48000, 24000)
	if len(result) != 240 {
		t.Errorf("expected 240 samples, got %d", len(result))
	}
}

func TestResampleInterpolates(t *testing.T) {
	samples := []int16{0, 1000}
	result := Resample(samples, 1, 2)
	if len(result) != 4 {
		t.Fatalf("expected 4 samples, got %d", len(result))
	}
	// Midpoint between 0 and 1000 lands at 500
	if result[1] != 500 {
		t.Errorf("expected interpolated 500, got %d", result[1])
	}
}

func TestConvertForPlaybackStereo(t *testing.T) {
	mono := ConvertInt16ToPCM16([]int16{100, 200, 300})

	out := convertForPlayback(mono, playbackRate)
	samples := ConvertPCM16ToInt16(out)

	if len(samples) != 6 {
		t.Fatalf("expected 6 stereo samples, got %d", len(samples))
	}
	// Each mono sample duplicated to left and right
	if samples[0] != 100 || samples[1] != 100 {
		t.Errorf("expected duplicated first sample, got %d/%d", samples[0], samples[1])
	}
	if samples[4] != 300 || samples[5] != 300 {
		t.Errorf("expected duplicated last sample, got %d/%d", samples[4], samples[5])
	}
}

func TestConvertForPlaybackResamples(t *testing.T) {
	mono := ConvertInt16ToPCM16(make([]int16, DefaultStreamRate/100)) // 10ms

	out := convertForPlayback(mono, DefaultStreamRate)
	samples := ConvertPCM16ToInt16(out)

	// 10ms at 44.1kHz stereo
	want := playbackRate / 100 * 2
	if len(samples) != want {
		t.Errorf("expected %d samples, got %d", want, len(samples))
	}
}
