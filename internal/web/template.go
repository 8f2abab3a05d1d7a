package web

import "html/template"

var verifyPage = template.Must(template.New("verify").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>Verify</title>
    <script src="https://cdn.jsdelivr.net/npm/@tailwindcss/browser@4"></script>
</head>
<body class="bg-[#0e0e10] min-h-screen flex items-center justify-center">
    <div class="bg-[#1e1f22] p-8 rounded-2xl text-center max-w-md">
        <h1 class="text-3xl font-bold text-white mb-4">Server Verification</h1>
        <p class="text-gray-400 mb-6">Click below to verify and gain access to the server</p>
        <a href="{{ .OAuthURL }}" class="inline-block bg-[#5865F2] hover:bg-[#4752C4] text-white font-semibold py-3 px-8 rounded-xl transition">
            Verify with Discord
        </a>
    </div>
</body>
</html>
`))

var successPage = template.Must(template.New("success").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>Verified!</title>
    <script src="https://cdn.jsdelivr.net/npm/@tailwindcss/browser@4"></script>
</head>
<body class="bg-[#0e0e10] min-h-screen flex items-center justify-center">
    <div class="bg-[#1e1f22] p-8 rounded-2xl text-center max-w-md">
        <div class="text-6xl mb-4">&#9989;</div>
        <h1 class="text-3xl font-bold text-white mb-4">Verified!</h1>
        <p class="text-gray-400">Welcome <span class="text-[#5865F2] font-semibold">{{ .Username }}</span>! You can close this tab now.</p>
    </div>
</body>
</html>
`))
