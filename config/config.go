package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"factreel/internal/appdirs"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

const placeholderKey = "YOUR_KEY"

// Config enumerates every recognized option. Pipeline options are flat
// top-level keys; the server and queue surfaces live in their own tables.
type Config struct {
	ApiUrl             string  `toml:"api_url" yaml:"api_url" json:"api_url"`
	AiExpansionEnabled bool    `toml:"ai_expansion_enabled" yaml:"ai_expansion_enabled" json:"ai_expansion_enabled"`
	FactTimeoutSeconds int     `toml:"fact_timeout_seconds" yaml:"fact_timeout_seconds" json:"fact_timeout_seconds"`
	NoveltyThreshold   float64 `toml:"novelty_threshold" yaml:"novelty_threshold" json:"novelty_threshold"`
	MaxKeywords        int     `toml:"max_keywords" yaml:"max_keywords" json:"max_keywords"`
	SegmentKeywords    int     `toml:"segment_keywords" yaml:"segment_keywords" json:"segment_keywords"`

	AudioLanguage   string  `toml:"audio_language" yaml:"audio_language" json:"audio_language"`
	SpeechSpeed     float64 `toml:"speech_speed" yaml:"speech_speed" json:"speech_speed"`
	TtsProvider     string  `toml:"tts_provider" yaml:"tts_provider" json:"tts_provider"`
	TtsVoice        string  `toml:"tts_voice" yaml:"tts_voice" json:"tts_voice"`
	BackgroundMusic string  `toml:"background_music" yaml:"background_music" json:"background_music"`
	MusicVolume     float64 `toml:"music_volume" yaml:"music_volume" json:"music_volume"`

	VideoDuration      float64 `toml:"video_duration" yaml:"video_duration" json:"video_duration"`
	Resolution         []int   `toml:"resolution" yaml:"resolution" json:"resolution"`
	Fps                int     `toml:"fps" yaml:"fps" json:"fps"`
	CropBackground     bool    `toml:"crop_background" yaml:"crop_background" json:"crop_background"`
	Header             string  `toml:"header" yaml:"header" json:"header"`
	Font               string  `toml:"font" yaml:"font" json:"font"`
	FontSize           int     `toml:"font_size" yaml:"font_size" json:"font_size"`
	TextColor          string  `toml:"text_color" yaml:"text_color" json:"text_color"`
	TextOutlineColor   string  `toml:"text_outline_color" yaml:"text_outline_color" json:"text_outline_color"`
	TextOutlineWidth   int     `toml:"text_outline_width" yaml:"text_outline_width" json:"text_outline_width"`
	HighlightEnabled   bool    `toml:"highlight_enabled" yaml:"highlight_enabled" json:"highlight_enabled"`
	TextHighlightColor string  `toml:"text_highlight_color" yaml:"text_highlight_color" json:"text_highlight_color"`
	PlaceholderColor   string  `toml:"placeholder_color" yaml:"placeholder_color" json:"placeholder_color"`

	BackgroundsDir  string   `toml:"backgrounds_dir" yaml:"backgrounds_dir" json:"backgrounds_dir"`
	DefaultQuery    string   `toml:"default_query" yaml:"default_query" json:"default_query"`
	VideoSources    []string `toml:"video_sources" yaml:"video_sources" json:"video_sources"`
	DirectVideoUrl  string   `toml:"direct_video_url" yaml:"direct_video_url" json:"direct_video_url"`
	RequestDelayMs  int      `toml:"request_delay_ms" yaml:"request_delay_ms" json:"request_delay_ms"`
	MultiBackground bool     `toml:"multi_background" yaml:"multi_background" json:"multi_background"`

	WordsPerSecond     float64 `toml:"words_per_second" yaml:"words_per_second" json:"words_per_second"`
	MaxWordsPerSegment int     `toml:"max_words_per_segment" yaml:"max_words_per_segment" json:"max_words_per_segment"`
	MinSegmentDuration float64 `toml:"min_segment_duration" yaml:"min_segment_duration" json:"min_segment_duration"`
	AlignAudio         bool    `toml:"align_audio" yaml:"align_audio" json:"align_audio"`
	SilenceThresholdDb float64 `toml:"silence_threshold_db" yaml:"silence_threshold_db" json:"silence_threshold_db"`
	MinSilenceLenMs    int     `toml:"min_silence_len_ms" yaml:"min_silence_len_ms" json:"min_silence_len_ms"`

	OutputDir string `toml:"output_dir" yaml:"output_dir" json:"output_dir"`

	PixabayApiKey     string `toml:"pixabay_api_key" yaml:"pixabay_api_key" json:"pixabay_api_key"`
	PexelsApiKey      string `toml:"pexels_api_key" yaml:"pexels_api_key" json:"pexels_api_key"`
	HuggingfaceApiKey string `toml:"huggingface_api_key" yaml:"huggingface_api_key" json:"huggingface_api_key"`
	GeminiApiKey      string `toml:"gemini_api_key" yaml:"gemini_api_key" json:"gemini_api_key"`
	OpenaiApiKey      string `toml:"openai_api_key" yaml:"openai_api_key" json:"openai_api_key"`
	MinimaxApiKey     string `toml:"minimax_api_key" yaml:"minimax_api_key" json:"minimax_api_key"`

	Llm    Llm    `toml:"llm" yaml:"llm" json:"llm"`
	Tts    Tts    `toml:"tts" yaml:"tts" json:"tts"`
	Server Server `toml:"server" yaml:"server" json:"server"`
	Queue  Queue  `toml:"queue" yaml:"queue" json:"queue"`
}

type Llm struct {
	BaseUrl string `toml:"base_url" yaml:"base_url" json:"base_url"`
	Model   string `toml:"model" yaml:"model" json:"model"`
}

type Tts struct {
	OpenaiBaseUrl  string `toml:"openai_base_url" yaml:"openai_base_url" json:"openai_base_url"`
	OpenaiModel    string `toml:"openai_model" yaml:"openai_model" json:"openai_model"`
	MinimaxGroupId string `toml:"minimax_group_id" yaml:"minimax_group_id" json:"minimax_group_id"`
	MinimaxModel   string `toml:"minimax_model" yaml:"minimax_model" json:"minimax_model"`
	EdgeTtsPath    string `toml:"edge_tts_path" yaml:"edge_tts_path" json:"edge_tts_path"`
}

type Server struct {
	Host string `toml:"host" yaml:"host" json:"host"`
	Port int    `toml:"port" yaml:"port" json:"port"`
}

type Queue struct {
	RedisAddr     string `toml:"redis_addr" yaml:"redis_addr" json:"redis_addr"`
	RedisPassword string `toml:"redis_password" yaml:"redis_password" json:"redis_password"`
	RedisDB       int    `toml:"redis_db" yaml:"redis_db" json:"redis_db"`
}

// Default returns the documented default for every option.
func Default() Config {
	return Config{
		ApiUrl:             "https://uselessfacts.jsph.pl/api/v2/facts/random?language=en",
		FactTimeoutSeconds: 10,
		NoveltyThreshold:   0.9,
		MaxKeywords:        5,
		SegmentKeywords:    3,

		AudioLanguage:   "en",
		SpeechSpeed:     1.0,
		TtsProvider:     "edge-tts",
		BackgroundMusic: filepath.Join("assets", "music", "background.mp3"),
		MusicVolume:     0.3,

		VideoDuration:      60,
		Resolution:         []int{1080, 1920},
		Fps:                32,
		CropBackground:     true,
		Header:             "Did You Know?",
		Font:               "Impact",
		FontSize:           90,
		TextColor:          "white",
		TextOutlineColor:   "black",
		TextOutlineWidth:   5,
		HighlightEnabled:   true,
		TextHighlightColor: "#FFD700",
		PlaceholderColor:   "#282828",

		BackgroundsDir:  filepath.Join("assets", "backgrounds"),
		DefaultQuery:    "nature",
		VideoSources:    []string{SourcePixabay, SourcePexels, SourceDirect},
		DirectVideoUrl:  "https://sample-videos.com/video123/mp4/720/big_buck_bunny_720p_1mb.mp4",
		RequestDelayMs:  800,
		MultiBackground: true,

		WordsPerSecond:     2.5,
		MaxWordsPerSegment: 5,
		MinSegmentDuration: 2.0,
		SilenceThresholdDb: -40,
		MinSilenceLenMs:    100,

		Llm: Llm{
			Model: "gpt-4o-mini",
		},
		Tts: Tts{
			OpenaiModel:  "tts-1",
			MinimaxModel: "speech-01-turbo",
		},
		Server: Server{
			Host: "127.0.0.1",
			Port: 8888,
		},
		Queue: Queue{
			RedisAddr: "localhost:6379",
		},
	}
}

// Width and Height read the validated resolution.
func (c *Config) Width() int  { return c.Resolution[0] }
func (c *Config) Height() int { return c.Resolution[1] }

var resolveConfigPath = func() (string, error) {
	paths, err := appdirs.Resolve()
	if err != nil {
		return "", err
	}
	return paths.ConfigFile, nil
}

// ResolveConfigPath returns the default config file location.
func ResolveConfigPath() (string, error) {
	return resolveConfigPath()
}

// Load decodes path on top of Default, applies environment keys and
// validates the result. Unknown or missing keys keep their defaults.
func Load(path string) (*Config, error) {
	conf := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err = decode(path, data, &conf); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	conf.applyEnv(os.Getenv)
	if err = conf.Validate(); err != nil {
		return nil, err
	}
	return &conf, nil
}

// LoadOrCreateConfig loads the config at the resolved path, writing the
// defaults first when no file exists. created reports whether it wrote one.
func LoadOrCreateConfig() (conf *Config, created bool, err error) {
	path, err := resolveConfigPath()
	if err != nil {
		return nil, false, fmt.Errorf("resolve config path: %w", err)
	}
	if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
		def := Default()
		if err = Save(&def, path); err != nil {
			return nil, false, err
		}
		created = true
	}
	conf, err = Load(path)
	return conf, created, err
}

// Save writes conf as TOML, creating parent directories.
func Save(conf *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(conf); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

func decode(path string, data []byte, conf *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, conf)
	case ".json":
		return json.Unmarshal(data, conf)
	default:
		_, err := toml.Decode(string(data), conf)
		return err
	}
}

func (c *Config) applyEnv(getenv func(string) string) {
	overrides := []struct {
		target *string
		env    string
	}{
		{&c.PixabayApiKey, "PIXABAY_API_KEY"},
		{&c.PexelsApiKey, "PEXELS_API_KEY"},
		{&c.HuggingfaceApiKey, "HUGGINGFACE_API_KEY"},
		{&c.GeminiApiKey, "GEMINI_API_KEY"},
		{&c.OpenaiApiKey, "OPENAI_API_KEY"},
		{&c.MinimaxApiKey, "MINIMAX_API_KEY"},
	}
	for _, o := range overrides {
		if *o.target == placeholderKey {
			*o.target = ""
		}
		if *o.target == "" {
			*o.target = strings.TrimSpace(getenv(o.env))
		}
	}
}
