package main

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/tdwhitaker/arbforge/config"
	"github.com/tdwhitaker/arbforge/modmap"
	"github.com/tdwhitaker/arbforge/pdw"
	"github.com/tdwhitaker/arbforge/pdwfile"
	"github.com/tdwhitaker/arbforge/shape"
	"github.com/tdwhitaker/arbforge/synth"

	"github.com/knadh/koanf/parsers/hcl"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

var cli struct {
	Verbose  bool `help:"Prints debug output"`
	Profiles struct {
	} `cmd:"" help:"List the known device profiles and their constraints"`
	Synth struct {
		Kind       string  `arg:"" help:"Waveform kind: sine|am|cw|chirp|barker|multitone|digmod|zero"`
		Out        string  `required:"" help:"Output file for big-endian int16 samples"`
		Profile    string  `default:"vsg" help:"Device profile to correct against"`
		SampleRate float64 `default:"100e6" help:"Sample rate in S/s"`
		Format     string  `default:"iq" help:"Sample format: iq|real"`
		ZeroLast   bool    `help:"Force the final sample to zero"`
		Frequency  float64 `default:"1e6" help:"Tone frequency or pulse offset in Hz"`
		Phase      float64 `help:"Starting phase in degrees"`
		Carrier    float64 `help:"Carrier frequency for real-format waveforms in Hz"`
		Depth      float64 `default:"50" help:"AM depth in percent"`
		ModRate    float64 `default:"1e5" help:"AM modulation rate in Hz"`
		Width      float64 `default:"10e-6" help:"Pulse width in seconds"`
		PRI        float64 `help:"Pulse repetition interval in seconds (0 = no dead time)"`
		Bandwidth  float64 `default:"20e6" help:"Chirp sweep bandwidth in Hz"`
		Code       string  `default:"b13" help:"Barker code: b2|b3|b41|b42|b5|b7|b11|b13"`
		Spacing    float64 `default:"1e6" help:"Multitone spacing in Hz"`
		NumTones   int     `default:"11" help:"Number of tones"`
		PhaseRel   string  `default:"random" help:"Multitone phase relation: random|zero|increasing|parabolic"`
		Scheme     string  `default:"qpsk" help:"Modulation scheme for digmod"`
		SymbolRate float64 `default:"10e6" help:"Symbol rate in symbols/s"`
		NumSymbols int     `default:"1000" help:"Random symbol count for digmod"`
		Filter     string  `default:"rrc" help:"Pulse shaping filter: rc|rrc"`
		RollOff    float64 `default:"0.35" help:"Filter roll-off factor"`
		PRBS       int     `help:"PRBS order for digmod data (0 = random symbols)"`
		Seed       int64   `help:"Seed for random symbols and phases"`
		Length     int     `default:"1000" help:"Sample count for the zero waveform"`
	} `cmd:"" help:"Synthesize a waveform and write it as interleaved int16"`
	Pdwfile struct {
		Table  string `arg:"" help:"CSV descriptor table"`
		Out    string `required:"" help:"Output stream file"`
		Family string `default:"vector" help:"Record family: analog|vector"`
	} `cmd:"" help:"Assemble a binary PDW stream file from a descriptor table"`
}

var conf = koanf.New(".")

func getConfigPath() string {
	paths := []string{"/etc/arbforge/config.hcl", "~/.config/arbforge/config.hcl", "./config.hcl"}
	for _, path := range paths {
		if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
			log.Infof("Found config file: %s", path)
			return path
		}
	}
	return ""
}

func loadConfig() {
	path := getConfigPath()
	if path == "" {
		log.Debug("No config file found, using built-in profiles and environment variables")
	} else if err := conf.Load(file.Provider(path), hcl.Parser(true)); err != nil {
		log.Errorf("Could not read config file: %v", err)
	}
	conf.Load(env.Provider("", env.Opt{
		Prefix: "ARBFORGE_",
		TransformFunc: func(k, v string) (string, any) {
			key := strings.ToLower(strings.TrimPrefix(k, "ARBFORGE_"))
			return strings.Replace(key, "_", ".", 1), v
		},
	}), nil)
}

func main() {
	flags := kong.Parse(&cli)
	if cli.Verbose {
		log.SetLevel(log.DebugLevel)
	}
	loadConfig()

	var err error
	switch flags.Command() {
	case "profiles":
		for _, name := range config.Names() {
			p, _ := config.Load(conf, name)
			fmt.Printf("%-12s min %5d samples, granularity %3d, rate %.4g-%.4g S/s\n",
				p.Name, p.MinLength, p.Granularity, p.MinSampleRate, p.MaxSampleRate)
		}
	case "synth <kind>":
		err = runSynth()
	case "pdwfile <table>":
		err = runPdwfile()
	}
	if err != nil {
		log.Fatalf("%v", err)
	}
}

func runSynth() error {
	c := &cli.Synth
	profile, err := config.Load(conf, c.Profile)
	if err != nil {
		return err
	}
	format, err := synth.ParseFormat(c.Format)
	if err != nil {
		return err
	}

	var w *synth.Waveform
	switch c.Kind {
	case "zero":
		w, err = synth.Zero(profile, c.SampleRate, c.Length, format)
	case "sine":
		w, err = synth.Sine(profile, c.SampleRate, c.Frequency, c.Phase, format, c.ZeroLast)
	case "am":
		w, err = synth.AM(profile, c.SampleRate, c.Depth, c.ModRate, c.Carrier, format, c.ZeroLast)
	case "cw":
		w, err = synth.CWPulse(profile, synth.CWPulseParams{
			SampleRate: c.SampleRate, Width: c.Width, PRI: c.PRI,
			FreqOffset: c.Frequency, Carrier: c.Carrier,
			Format: format, ZeroLast: c.ZeroLast,
		})
	case "chirp":
		w, err = synth.Chirp(profile, synth.ChirpParams{
			SampleRate: c.SampleRate, Width: c.Width, PRI: c.PRI,
			Bandwidth: c.Bandwidth, Carrier: c.Carrier,
			Format: format, ZeroLast: c.ZeroLast,
		})
	case "barker":
		w, err = synth.Barker(profile, synth.BarkerParams{
			SampleRate: c.SampleRate, Width: c.Width, PRI: c.PRI,
			Code: c.Code, Carrier: c.Carrier,
			Format: format, ZeroLast: c.ZeroLast,
		})
	case "multitone":
		rel, perr := synth.ParsePhaseRelation(c.PhaseRel)
		if perr != nil {
			return perr
		}
		w, err = synth.Multitone(profile, synth.MultitoneParams{
			SampleRate: c.SampleRate, ToneSpacing: c.Spacing, NumTones: c.NumTones,
			Phase: rel, Carrier: c.Carrier, Format: format, Seed: c.Seed,
		})
	case "digmod":
		scheme, serr := modmap.ParseScheme(c.Scheme)
		if serr != nil {
			return serr
		}
		filter, ferr := shape.ParseKind(c.Filter)
		if ferr != nil {
			return ferr
		}
		w, err = synth.DigitalModulation(profile, synth.DigModParams{
			SampleRate: c.SampleRate, SymbolRate: c.SymbolRate,
			Scheme: scheme, NumSymbols: c.NumSymbols,
			Filter: filter, RollOff: c.RollOff, Carrier: c.Carrier,
			Format: format, ZeroLast: c.ZeroLast,
			PRBSOrder: c.PRBS, Seed: c.Seed,
		})
	default:
		return fmt.Errorf("unknown waveform kind %q", c.Kind)
	}
	if err != nil {
		return err
	}

	log.Infof("Synthesized %d %s samples at %.4g S/s (x%d tiled)",
		w.Len(), w.Format, w.SampleRate, w.Repeats)
	return writeInt16(c.Out, w)
}

// writeInt16 formats the waveform the way the signal generators
// ingest raw sample files: full-scale int16, big-endian, iq
// waveforms interleaved I then Q.
func writeInt16(path string, w *synth.Waveform) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	const fullScale = 32767
	var buf []byte
	if w.Format == synth.FormatReal {
		buf = make([]byte, 2*len(w.Real))
		for i, v := range w.Real {
			binary.BigEndian.PutUint16(buf[2*i:], uint16(int16(math.Round(v*fullScale))))
		}
	} else {
		buf = make([]byte, 4*len(w.IQ))
		for i, v := range w.IQ {
			binary.BigEndian.PutUint16(buf[4*i:], uint16(int16(math.Round(real(v)*fullScale))))
			binary.BigEndian.PutUint16(buf[4*i+2:], uint16(int16(math.Round(imag(v)*fullScale))))
		}
	}
	if _, err := f.Write(buf); err != nil {
		return err
	}
	log.Infof("Wrote %d bytes to %s", len(buf), path)
	return nil
}

func runPdwfile() error {
	c := &cli.Pdwfile
	in, err := os.Open(c.Table)
	if err != nil {
		return err
	}
	defer in.Close()

	var out []byte
	switch c.Family {
	case "analog":
		var pdws []pdw.Analog
		pdws, err = pdwfile.ReadAnalogTable(in)
		if err != nil {
			return err
		}
		out, err = pdwfile.AssembleAnalog(pdws, pdwfile.AnalogOptions{})
		if err != nil {
			return err
		}
		log.Infof("Assembled %d analog descriptors", len(pdws))
	case "vector":
		var pdws []pdw.Vector
		pdws, err = pdwfile.ReadVectorTable(in)
		if err != nil {
			return err
		}
		out, err = pdwfile.AssembleVector(pdws)
		if err != nil {
			return err
		}
		log.Infof("Assembled %d vector descriptors", len(pdws))
	default:
		return fmt.Errorf("unknown record family %q", c.Family)
	}

	if err := os.WriteFile(c.Out, out, 0o644); err != nil {
		return err
	}
	log.Infof("Wrote %d bytes to %s", len(out), c.Out)
	return nil
}
