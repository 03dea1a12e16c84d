package runner

// stealthInitScript is injected before any document load. Its
// integrity — in particular the Function.prototype.toString patch —
// is a correctness requirement, not a cosmetic one: a page that
// inspects permissions.query.toString() and finds it un-patched can
// tell the override is there.
const stealthInitScript = `
(() => {
  const origToString = Function.prototype.toString;
  const patchToString = (fn, source) => {
    const wrapped = new Proxy(fn, {
      apply(target, thisArg, args) { return Reflect.apply(target, thisArg, args); }
    });
    const patchedToString = function() {
      if (this === wrapped) return source;
      return origToString.call(this);
    };
    Object.defineProperty(wrapped, 'toString', { value: patchedToString, configurable: true });
    return wrapped;
  };

  Object.defineProperty(Navigator.prototype, 'webdriver', { get: () => false, configurable: true });

  Object.defineProperty(Navigator.prototype, 'languages', { get: () => ['en-US', 'en'], configurable: true });
  Object.defineProperty(Navigator.prototype, 'platform', { get: () => 'Win32', configurable: true });
  Object.defineProperty(Navigator.prototype, 'vendor', { get: () => 'Google Inc.', configurable: true });
  Object.defineProperty(Navigator.prototype, 'hardwareConcurrency', { get: () => 8, configurable: true });
  Object.defineProperty(Navigator.prototype, 'deviceMemory', { get: () => 8, configurable: true });

  const pluginData = [
    { name: 'PDF Viewer', filename: 'internal-pdf-viewer' },
    { name: 'Chrome PDF Viewer', filename: 'internal-pdf-viewer' },
    { name: 'Chromium PDF Viewer', filename: 'internal-pdf-viewer' },
  ];
  Object.defineProperty(Navigator.prototype, 'plugins', { get: () => pluginData, configurable: true });
  Object.defineProperty(Navigator.prototype, 'mimeTypes', {
    get: () => [{ type: 'application/pdf', suffixes: 'pdf', description: '' }],
    configurable: true,
  });

  if (navigator.userAgentData) {
    Object.defineProperty(navigator.userAgentData, 'brands', {
      get: () => [
        { brand: 'Chromium', version: '124' },
        { brand: 'Google Chrome', version: '124' },
        { brand: 'Not-A.Brand', version: '99' },
      ],
      configurable: true,
    });
  }

  const origQuery = window.navigator.permissions.query;
  const patchedQuery = (parameters) => (
    parameters.name === 'notifications'
      ? Promise.resolve({ state: Notification.permission })
      : origQuery(parameters)
  );
  window.navigator.permissions.query = patchToString(
    patchedQuery,
    'function query() { [native code] }'
  );

  const getParameterProxy = (getContext) => {
    const proto = getContext.prototype;
    const origGetParameter = proto.getParameter;
    proto.getParameter = patchToString(function (parameter) {
      if (parameter === 37445) return 'Intel Inc.';
      if (parameter === 37446) return 'Intel Iris OpenGL Engine';
      return origGetParameter.call(this, parameter);
    }, 'function getParameter() { [native code] }');
  };
  if (window.WebGLRenderingContext) getParameterProxy(window.WebGLRenderingContext);
  if (window.WebGL2RenderingContext) getParameterProxy(window.WebGL2RenderingContext);
})();
`
