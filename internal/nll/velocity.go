package nll

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Named velocity models selectable by ApplyOverrides and the CLI --model
// flag.
const (
	ModelVDAPStratovolcano = "vdap_stratovolcano"
	ModelBasicCrust        = "basic_crust"
)

// defaultVpVs converts P velocity to S for models specified as depth/Vp
// pairs only.
const defaultVpVs = 1.73

// DefaultStratovolcanoLayers returns the generic stratovolcano model of
// Pesicek & Rynberg (2024), used when no model is chosen explicitly.
func DefaultStratovolcanoLayers() []VelocityLayer {
	return layersFromTable([][3]float64{
		{0.00, 4.2669, 2.4664},
		{1.00, 4.6400, 2.6821},
		{2.00, 4.9574, 2.8656},
		{3.00, 5.2000, 3.0059},
		{4.00, 5.3846, 3.1125},
		{5.00, 5.5344, 3.1991},
		{6.00, 5.6382, 3.2591},
		{7.00, 5.7612, 3.3302},
		{8.00, 5.8638, 3.3895},
		{9.00, 5.9561, 3.4429},
		{10.00, 6.0681, 3.5076},
		{11.00, 6.1625, 3.5621},
		{12.00, 6.2579, 3.6173},
		{13.00, 6.3340, 3.6613},
		{14.00, 6.3930, 3.6954},
		{15.00, 6.5047, 3.7600},
		{16.00, 6.5277, 3.7732},
		{17.00, 6.5967, 3.8131},
		{18.00, 6.6520, 3.8451},
		{19.00, 6.7230, 3.8861},
		{20.00, 6.7715, 3.9142},
		{21.00, 6.8049, 3.8861},
		{22.00, 6.8533, 3.9614},
		{23.00, 6.8985, 3.9876},
		{24.00, 6.9619, 4.0242},
		{25.00, 6.9889, 4.0398},
		{26.00, 7.0233, 4.0597},
		{27.00, 7.0807, 4.0929},
		{28.00, 7.1085, 4.1089},
	})
}

// VolcanoEdificeLayers returns the stratovolcano model extended above sea
// level, matching a grid whose top sits at -6 km.
func VolcanoEdificeLayers() []VelocityLayer {
	return layersFromTable([][3]float64{
		{-6.00, 2.5487, 1.4732},
		{-5.00, 2.8855, 1.6679},
		{-4.00, 3.2036, 1.8518},
		{-3.00, 3.5037, 2.0253},
		{-2.00, 3.7864, 2.1887},
		{-1.00, 4.0523, 2.3424},
		{0.00, 4.3020, 2.4867},
		{1.00, 4.5361, 2.6220},
		{2.00, 4.7552, 2.7487},
		{3.00, 4.9599, 2.8670},
		{4.00, 5.1508, 2.9773},
		{5.00, 5.3286, 3.0801},
		{6.00, 5.4937, 3.1756},
		{7.00, 5.6470, 3.2641},
		{8.00, 5.7888, 3.3462},
		{9.00, 5.9200, 3.4219},
		{10.00, 6.0409, 3.4919},
		{11.00, 6.1524, 3.5563},
		{12.00, 6.2549, 3.6155},
		{13.00, 6.3491, 3.6700},
		{14.00, 6.4355, 3.7199},
		{15.00, 6.5149, 3.7658},
		{16.00, 6.5877, 3.8079},
		{17.00, 6.6546, 3.8466},
		{18.00, 6.7163, 3.8822},
		{19.00, 6.7732, 3.9151},
		{20.00, 6.8261, 3.9457},
		{21.00, 6.8755, 3.9743},
		{22.00, 6.9220, 4.0011},
		{23.00, 6.9662, 4.0267},
		{24.00, 7.0088, 4.0513},
		{25.00, 7.0503, 4.0753},
		{26.00, 7.0914, 4.0991},
		{27.00, 7.1327, 4.1229},
		{28.00, 7.1747, 4.1472},
		{29.00, 7.2181, 4.1723},
		{30.00, 7.2634, 4.1985},
	})
}

// BasicCrustLayers returns a four-layer standard crustal model.
func BasicCrustLayers() []VelocityLayer {
	return layersFromVp([][2]float64{
		{0.0, 2.0},
		{2.0, 4.0},
		{8.0, 5.5},
		{20.0, 6.8},
	})
}

// RegionalCrustLayers returns the crustal model used by the regional preset.
func RegionalCrustLayers() []VelocityLayer {
	return layersFromVp([][2]float64{
		{0.0, 6.0},
		{15.0, 6.5},
		{25.0, 7.8},
		{35.0, 8.1},
	})
}

// vdapStratovolcanoLayers returns the VDAP stratovolcano model given as
// depth/Vp pairs.
func vdapStratovolcanoLayers() []VelocityLayer {
	return layersFromVp([][2]float64{
		{0.0, 2.0},
		{0.5, 3.0},
		{1.0, 3.8},
		{2.0, 4.8},
		{4.0, 5.8},
		{8.0, 6.2},
		{15.0, 6.8},
		{30.0, 8.0},
	})
}

func layersFromTable(rows [][3]float64) []VelocityLayer {
	layers := make([]VelocityLayer, len(rows))
	for i, r := range rows {
		layers[i] = VelocityLayer{Depth: r[0], VpTop: r[1], VsTop: r[2], RhoTop: 2.7}
	}
	return layers
}

func layersFromVp(rows [][2]float64) []VelocityLayer {
	layers := make([]VelocityLayer, len(rows))
	for i, r := range rows {
		layers[i] = VelocityLayer{Depth: r[0], VpTop: r[1], VsTop: r[1] / defaultVpVs, RhoTop: 2.7}
	}
	return layers
}

// SetVelocityModel replaces the layer collection with a named model, or with
// a YAML model file when the name carries a .yaml/.yml suffix. Unknown names
// fall back to the basic crustal model with a warning diagnostic.
func (c *Config) SetVelocityModel(name string) {
	switch name {
	case ModelVDAPStratovolcano:
		c.Layers = vdapStratovolcanoLayers()
	case ModelBasicCrust:
		c.Layers = BasicCrustLayers()
	default:
		if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
			layers, err := LoadVelocityModelFile(name)
			if err != nil {
				c.log().Warn("velocity model file not usable, keeping current model", "model", name, "error", err)
				return
			}
			c.Layers = layers
			return
		}
		c.log().Warn("unknown velocity model, using basic crust", "model", name)
		c.Layers = BasicCrustLayers()
	}
}

type velocityModelFile struct {
	Layers []velocityLayerEntry `yaml:"layers"`
}

type velocityLayerEntry struct {
	Depth   float64 `yaml:"depth"`
	Vp      float64 `yaml:"vp"`
	VpGrad  float64 `yaml:"vp_grad"`
	Vs      float64 `yaml:"vs"`
	VsGrad  float64 `yaml:"vs_grad"`
	Rho     float64 `yaml:"rho"`
	RhoGrad float64 `yaml:"rho_grad"`
}

// LoadVelocityModelFile reads a layered model from a YAML file. Missing Vs
// is derived from Vp with a 1.73 ratio; missing density defaults to 2.7.
func LoadVelocityModelFile(path string) ([]VelocityLayer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading velocity model: %w", err)
	}
	var f velocityModelFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing velocity model %s: %w", path, err)
	}
	if len(f.Layers) == 0 {
		return nil, fmt.Errorf("velocity model %s defines no layers", path)
	}
	layers := make([]VelocityLayer, len(f.Layers))
	for i, e := range f.Layers {
		vs := e.Vs
		if vs == 0 && e.Vp != 0 {
			vs = e.Vp / defaultVpVs
		}
		rho := e.Rho
		if rho == 0 {
			rho = 2.7
		}
		layers[i] = VelocityLayer{
			Depth:   e.Depth,
			VpTop:   e.Vp,
			VpGrad:  e.VpGrad,
			VsTop:   vs,
			VsGrad:  e.VsGrad,
			RhoTop:  rho,
			RhoGrad: e.RhoGrad,
		}
	}
	return layers, nil
}
