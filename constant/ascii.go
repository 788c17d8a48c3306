package constant

// AsciiArtLogo is the banner rendered by the root command help.
const AsciiArtLogo = `
 _        _                    _
| |_ ___ | | ____ _ _ __ __ _ | |__
| __/ _ \| |/ / _` + "`" + ` | '__/ _` + "`" + ` || '_ \
| || (_) |   < (_| | | | (_| || |_) |
 \__\___/|_|\_\__, |_|  \__,_||_.__/
              |___/`
