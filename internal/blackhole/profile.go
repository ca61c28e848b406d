package blackhole

import (
	"math"
	"regexp"

	"github.com/tejashwikalptaru/singularity/internal/domain"
)

const (
	mobileMaxWidth = 768
	maxPixelRatio  = 2.0
)

var (
	mobileAgent  = regexp.MustCompile(`(?i)Android|webOS|iPhone|iPad|iPod|BlackBerry|IEMobile|Opera Mini`)
	lowEndAgent  = regexp.MustCompile(`(?i)Android.*[2-5]\.|iPhone.*[1-8]S|iPad.*[1-4]`)
	tierProfiles = map[domain.QualityTier]domain.PerformanceProfile{
		domain.TierDesktop: {
			Tier:                    domain.TierDesktop,
			ParticleCount:           350,
			FrameRateCap:            60,
			EnableComplexAnimations: true,
			EnableParticleEffects:   true,
			EnableBlur:              true,
		},
		domain.TierMobile: {
			Tier:                    domain.TierMobile,
			ParticleCount:           150,
			FrameRateCap:            45,
			EnableComplexAnimations: true,
			EnableParticleEffects:   true,
		},
		domain.TierLow: {
			Tier:                  domain.TierLow,
			ParticleCount:         50,
			FrameRateCap:          30,
			EnableParticleEffects: true,
		},
	}
)

// DeriveProfile computes the rendering budget for a device.
// Low performance wins over mobile when both apply.
func DeriveProfile(s domain.DeviceSignals) domain.PerformanceProfile {
	isMobile := mobileAgent.MatchString(s.UserAgent) || (s.Width > 0 && s.Width < mobileMaxWidth)

	isLow := lowEndAgent.MatchString(s.UserAgent) ||
		(s.DeviceMemoryGB > 0 && s.DeviceMemoryGB < 4) ||
		(s.HardwareConcurrency > 0 && s.HardwareConcurrency < 4) ||
		(s.Width > 0 && s.Height > 0 && s.Width < 480 && s.Height < 800)

	tier := domain.TierDesktop
	switch {
	case isLow:
		tier = domain.TierLow
	case isMobile:
		tier = domain.TierMobile
	}

	p := ProfileForTier(tier, s.DevicePixelRatio)
	p.IsMobile = isMobile
	p.IsLowPerformance = isLow
	return p
}

// ProfileForTier returns the fixed budget of a tier with the pixel ratio clamped to 2.
func ProfileForTier(tier domain.QualityTier, dpr float64) domain.PerformanceProfile {
	p, ok := tierProfiles[tier]
	if !ok {
		p = tierProfiles[domain.TierDesktop]
	}
	p.IsMobile = tier != domain.TierDesktop
	p.IsLowPerformance = tier == domain.TierLow
	p.DevicePixelRatio = clampPixelRatio(dpr)
	return p
}

// ParseTier converts a tier name ("desktop", "mobile", "low") to a QualityTier.
func ParseTier(name string) (domain.QualityTier, bool) {
	for tier := range tierProfiles {
		if tier.String() == name {
			return tier, true
		}
	}
	return domain.TierDesktop, false
}

// Degrade steps a profile down one tier. The lowest tier is returned unchanged.
func Degrade(p domain.PerformanceProfile) (domain.PerformanceProfile, bool) {
	if p.Tier >= domain.TierLow {
		return p, false
	}
	next := ProfileForTier(p.Tier+1, p.DevicePixelRatio)
	next.IsMobile = next.IsMobile || p.IsMobile
	return next, true
}

func clampPixelRatio(dpr float64) float64 {
	if dpr <= 0 || math.IsNaN(dpr) {
		return 1
	}
	return math.Min(dpr, maxPixelRatio)
}
