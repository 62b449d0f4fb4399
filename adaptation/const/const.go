package constant

var (
	// SCRIPT_MAP selects the adaptation script per method. Methods not
	// listed here fall back to the bnm script.
	SCRIPT_MAP = map[string]string{
		"bnm":  "bnm.py",
		"tent": "tent.py",
	}

	// CIFAR-10-C corruption names, severity levels 1-5.
	CORRUPTIONS = []string{
		"gaussian_noise",
		"shot_noise",
		"impulse_noise",
		"defocus_blur",
		"glass_blur",
		"motion_blur",
		"zoom_blur",
		"snow",
		"frost",
		"fog",
		"brightness",
		"contrast",
		"elastic_transform",
		"pixelate",
		"jpeg_compression",
	}
)

const AdaptationDockerfilePath = "./adaptation/execution"
