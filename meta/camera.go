package meta

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"greg-hacke/photosnorm/exif"
	"greg-hacke/photosnorm/tags"
)

const undefined = "Undefined"

// CameraInfo summarizes the shooting parameters of a photo. Empty strings
// and nil pointers mean the value is not recorded.
type CameraInfo struct {
	Camera   string
	Exposure string
	Bias     string
	Aperture string
	ISO      *uint16
	Focal    *float64
	Flash    string
}

func (c CameraInfo) String() string {
	or := func(s, def string) string {
		if s == "" {
			return def
		}
		return s
	}
	iso := undefined
	if c.ISO != nil {
		iso = strconv.Itoa(int(*c.ISO))
	}
	focal := undefined
	if c.Focal != nil {
		focal = formatFloat(*c.Focal) + " mm"
	}
	return fmt.Sprintf("%s, Exposure: %s, Bias: %s, Aperture: %s, ISO: %s, Focal: %s, Flash: %s",
		or(c.Camera, "Unknown camera"), or(c.Exposure, undefined), or(c.Bias, undefined),
		or(c.Aperture, undefined), iso, focal, or(c.Flash, undefined))
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// readCameraInfo extracts the camera summary from the EXIF tags
func readCameraInfo(s *exif.Store) CameraInfo {
	var info CameraInfo
	if s == nil {
		return info
	}

	var parts []string
	for _, tag := range []uint16{tags.Make, tags.Model} {
		if v, ok := s.GetString(tag); ok && strings.TrimSpace(v) != "" {
			parts = append(parts, strings.TrimSpace(v))
		}
	}
	info.Camera = strings.Join(parts, " ")
	if sw, ok := s.GetString(tags.Software); ok && info.Camera != "" && strings.TrimSpace(sw) != "" {
		info.Camera += " (" + strings.TrimSpace(sw) + ")"
	}

	if r, ok := s.GetURational(tags.ExposureTime); ok {
		info.Exposure = r.String()
	} else if r, ok := s.GetSRational(tags.ShutterSpeedValue); ok {
		info.Exposure = apexExposure(r.Float64())
	}

	if r, ok := s.GetSRational(tags.ExposureCompensation); ok {
		if r.Num == 0 {
			info.Bias = "0"
		} else {
			info.Bias = r.String()
		}
	}

	if r, ok := s.GetURational(tags.FNumber); ok {
		info.Aperture = fmt.Sprintf("%.1f", r.Float64())
	} else if r, ok := s.GetURational(tags.ApertureValue); ok {
		info.Aperture = fmt.Sprintf("%.1f", math.Pow(2, r.Float64()/2))
	}

	if v, ok := s.GetUint(tags.ISO); ok {
		iso := uint16(v)
		info.ISO = &iso
	}

	if r, ok := s.GetURational(tags.FocalLength); ok {
		focal := r.Float64()
		info.Focal = &focal
	}

	if v, ok := s.GetUint(tags.Flash); ok {
		info.Flash = flashName(uint16(v))
	}
	return info
}

// apexExposure converts an APEX shutter speed value to seconds
func apexExposure(apex float64) string {
	v := math.Pow(2, -apex)
	if v > 0 && v < 0.25001 {
		return fmt.Sprintf("1/%d", int64(0.5+1/v))
	}
	return formatFloat(v)
}

// flashName labels a Flash tag value
func flashName(code uint16) string {
	if name, ok := tags.FlashNames[strconv.Itoa(int(code))]; ok {
		return name
	}
	return "Unknown flash code"
}
